package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"NewsRanker/internal/domain"
	"NewsRanker/internal/ports"
	"NewsRanker/internal/sentiment"
)

// Client talks to an external sentiment inference service (a hosted
// transformers "sentiment-analysis" pipeline).
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
}

var _ ports.SentimentPredictor = (*Client)(nil)

// NewClient creates a reusable HTTP client. A non-positive rps disables throttling.
func NewClient(endpoint, apiKey string, rps float64) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
		limiter:  limiter,
		validate: validator.New(),
	}
}

type predictResponse struct {
	Label string  `json:"label" validate:"required"`
	Score float64 `json:"score" validate:"gte=0,lte=1"`
}

// Predict classifies text. Blank text is NEUTRAL with zero confidence and never
// reaches the service.
func (c *Client) Predict(ctx context.Context, text string) (domain.SentimentPrediction, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentPrediction{Label: domain.LabelNeutral, Score: 0}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("inference rate limit: %w", err)
	}

	var resp []predictResponse
	if err := c.post(ctx, "/predict", map[string]any{"text": text}, &resp); err != nil {
		return domain.SentimentPrediction{}, err
	}
	if len(resp) == 0 {
		return domain.SentimentPrediction{}, fmt.Errorf("empty prediction response")
	}
	if err := c.validate.Struct(resp[0]); err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("invalid prediction: %w", err)
	}

	label, err := sentiment.ParseLabel(resp[0].Label)
	if err != nil {
		return domain.SentimentPrediction{}, err
	}
	return domain.SentimentPrediction{Label: label, Score: resp[0].Score}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		if err := resp.Body.Close(); err != nil {
			return fmt.Errorf("close response body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
