package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsRanker/internal/config"
	"NewsRanker/internal/domain"
	"NewsRanker/internal/scanner"
)

const newsAPIDefaultURL = "https://newsapi.org/v2/everything"

// NewsAPIScanner queries the NewsAPI "everything" endpoint for a search term.
type NewsAPIScanner struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	pageSize int
	allowed  map[string]struct{}
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ scanner.Scanner = (*NewsAPIScanner)(nil)

// NewNewsAPIScanner wires an HTTP client; pageSize defaults to 50 and the
// limiter to one request per second.
func NewNewsAPIScanner(client *http.Client, cfg config.NewsAPIConfig, log *slog.Logger) *NewsAPIScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = newsAPIDefaultURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedQueries))
	for _, q := range cfg.AllowedQueries {
		allowed[normalizeQuery(q)] = struct{}{}
	}

	return &NewsAPIScanner{
		client:   client,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		pageSize: pageSize,
		allowed:  allowed,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   log,
	}
}

// Name identifies the strategy inside the registry.
func (n *NewsAPIScanner) Name() string {
	return "newsapi"
}

// Scan fetches one page of articles matching req.Query.
func (n *NewsAPIScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("newsapi: empty query")
	}
	if len(n.allowed) > 0 {
		if _, ok := n.allowed[normalizeQuery(query)]; !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrQueryNotAllowed, query)
		}
	}

	pageURL, err := buildQueryURL(n.baseURL, query, n.language, n.pageSize)
	if err != nil {
		return nil, err
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("newsapi rate limit: %w", err)
	}

	payload, err := n.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		article, ok := toArticle(item)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}

	if n.logger != nil {
		n.logger.Debug("newsapi page", "query", query, "total", payload.TotalResults, "kept", len(articles))
	}
	return articles, nil
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (n *NewsAPIScanner) fetch(ctx context.Context, pageURL string) (newsAPIResponse, error) {
	var payload newsAPIResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return payload, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsRanker/1.0")
	req.Header.Set("Accept", "application/json")
	if n.apiKey != "" {
		req.Header.Set("X-Api-Key", n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return payload, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr newsAPIResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return payload, fmt.Errorf("newsapi returned %s: %s", resp.Status, apiErr.Message)
		}
		return payload, fmt.Errorf("newsapi returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode articles: %w", err)
	}
	if payload.Status != "" && payload.Status != "ok" {
		return payload, fmt.Errorf("newsapi status %s: %s", payload.Status, payload.Message)
	}
	return payload, nil
}

func toArticle(item newsAPIArticle) (domain.Article, bool) {
	title := CleanText(item.Title)
	if title == "" || title == "[Removed]" {
		return domain.Article{}, false
	}

	source := strings.TrimSpace(item.Source.Name)
	if source == "" {
		source = strings.TrimSpace(item.Source.ID)
	}

	publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
	if err != nil {
		publishedAt = time.Time{}
	}

	return domain.Article{
		ID:          articleID(item.URL, source, title),
		Title:       title,
		Content:     CleanText(item.Content),
		Description: CleanText(item.Description),
		URL:         item.URL,
		Source:      source,
		PublishedAt: publishedAt.UTC(),
	}, true
}

func buildQueryURL(base, query, language string, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid newsapi url %s: %w", base, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortBy", "publishedAt")
	if language != "" {
		q.Set("language", language)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
