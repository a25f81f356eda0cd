package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsRanker/internal/domain"
	"NewsRanker/internal/scanner"
)

// optionMatchQuery keeps only feed items mentioning the query when set to "true".
const optionMatchQuery = "matchQuery"

// RSSScanner reads RSS/Atom feeds configured for a site.
type RSSScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires an HTTP client used by the feed parser.
func NewRSSScanner(client *http.Client, log *slog.Logger) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client, logger: log}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan parses every feed of the site and converts its items to articles.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	matchQuery := strings.EqualFold(req.Options[optionMatchQuery], "true")
	needle := strings.ToLower(strings.TrimSpace(req.Query))

	fp := gofeed.NewParser()
	fp.Client = r.client

	var results []domain.Article
	for _, f := range req.Feeds {
		feed, err := fp.ParseURLWithContext(f.URL, ctx)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", f.URL, err)
		}

		source := strings.TrimSpace(f.Name)
		if source == "" {
			source = strings.TrimSpace(feed.Title)
		}

		kept := 0
		for _, item := range feed.Items {
			article, ok := itemToArticle(item, source)
			if !ok {
				continue
			}
			if matchQuery && needle != "" && !strings.Contains(strings.ToLower(article.Title+" "+article.Text()), needle) {
				continue
			}
			results = append(results, article)
			kept++
		}

		if r.logger != nil {
			r.logger.Debug("rss feed parsed", "feed", f.URL, "items", len(feed.Items), "kept", kept)
		}
	}

	return results, nil
}

func itemToArticle(item *gofeed.Item, source string) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}
	title := CleanText(item.Title)
	if title == "" {
		return domain.Article{}, false
	}

	var publishedAt time.Time
	switch {
	case item.PublishedParsed != nil:
		publishedAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		publishedAt = item.UpdatedParsed.UTC()
	}

	link := item.Link
	if link == "" {
		link = item.GUID
	}

	return domain.Article{
		ID:          articleID(link, source, title),
		Title:       title,
		Content:     CleanText(item.Content),
		Description: CleanText(item.Description),
		URL:         item.Link,
		Source:      source,
		PublishedAt: publishedAt,
	}, true
}
