package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsRanker/internal/config"
	"NewsRanker/internal/domain"
	"NewsRanker/internal/ports"
	"NewsRanker/internal/sentiment"
)

const classificationInstruction = `Classify the market sentiment of the news text. ` +
	`Reply with JSON only: {"label":"POSITIVE|NEGATIVE|NEUTRAL","score":<confidence between 0 and 1>}.`

// maxPromptChars bounds the article text sent per request.
const maxPromptChars = 4000

// ChatGPTClient implements ports.SentimentPredictor backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.SentimentPredictor = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.ChatGPTConfig) *ChatGPTClient {
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Predict asks the chat model to classify text and parses its JSON answer.
func (c *ChatGPTClient) Predict(ctx context.Context, text string) (domain.SentimentPrediction, error) {
	if c == nil {
		return domain.SentimentPrediction{}, fmt.Errorf("chatgpt client is nil")
	}
	if strings.TrimSpace(text) == "" {
		return domain.SentimentPrediction{Label: domain.LabelNeutral, Score: 0}, nil
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.SentimentPrediction{}, fmt.Errorf("chatgpt client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"temperature": 0,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt) + "\n" + classificationInstruction},
			{"role": "user", "content": truncate(text, maxPromptChars)},
		},
	})
	if err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("classify sentiment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.SentimentPrediction{}, fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return domain.SentimentPrediction{}, fmt.Errorf("chatgpt returned no choices")
	}

	return parseAnswer(decoded.Choices[0].Message.Content)
}

// parseAnswer extracts the JSON object from the model reply, tolerating code fences.
func parseAnswer(content string) (domain.SentimentPrediction, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return domain.SentimentPrediction{}, fmt.Errorf("chatgpt answer is not json: %q", content)
	}

	var answer struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &answer); err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("parse chatgpt answer: %w", err)
	}

	label, err := sentiment.ParseLabel(answer.Label)
	if err != nil {
		return domain.SentimentPrediction{}, err
	}
	if answer.Score < 0 || answer.Score > 1 {
		return domain.SentimentPrediction{}, fmt.Errorf("chatgpt score %v outside [0,1]", answer.Score)
	}
	return domain.SentimentPrediction{Label: label, Score: answer.Score}, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a financial analyst assessing news sentiment."
	}
	return prompt
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
