package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRanker/internal/config"
	"NewsRanker/internal/domain"
)

func chatServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Model != "test-model" || len(req.Messages) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": answer}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newClient(url string) *ChatGPTClient {
	return NewChatGPTClient(config.ChatGPTConfig{Endpoint: url, Model: "test-model", APIKey: "key"})
}

func TestPredict(t *testing.T) {
	t.Parallel()

	server := chatServer(t, "```json\n{\"label\": \"Positive\", \"score\": 0.82}\n```")
	got, err := newClient(server.URL).Predict(context.Background(), "Earnings beat expectations")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPrediction{Label: domain.LabelPositive, Score: 0.82}, got)
}

func TestPredictRejectsBadAnswers(t *testing.T) {
	t.Parallel()

	for _, answer := range []string{
		"I think it is positive",
		`{"label":"BULLISH","score":0.9}`,
		`{"label":"NEGATIVE","score":3}`,
	} {
		server := chatServer(t, answer)
		_, err := newClient(server.URL).Predict(context.Background(), "text")
		require.Error(t, err, answer)
	}
}

func TestPredictMisconfigured(t *testing.T) {
	t.Parallel()

	_, err := NewChatGPTClient(config.ChatGPTConfig{}).Predict(context.Background(), "text")
	require.Error(t, err)

	got, err := NewChatGPTClient(config.ChatGPTConfig{}).Predict(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNeutral, got.Label)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "abc", truncate("abc", 4))
}
