package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsRanker/internal/domain"
)

func TestPredict(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[{"label":"negative","score":0.87}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "key", 0)
	got, err := client.Predict(context.Background(), "Bank warns of losses")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentPrediction{Label: domain.LabelNegative, Score: 0.87}, got)
}

func TestPredictBlankTextSkipsService(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	got, err := NewClient(server.URL, "", 0).Predict(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNeutral, got.Label)
	assert.Zero(t, got.Score)
	assert.Zero(t, calls.Load())
}

func TestPredictRejectsBadResponses(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown label":   `[{"label":"MIXED","score":0.5}]`,
		"score too large": `[{"label":"POSITIVE","score":1.5}]`,
		"empty":           `[]`,
		"missing label":   `[{"score":0.5}]`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, "", 0).Predict(context.Background(), "text")
			require.Error(t, err)
		})
	}
}

func TestPredictUnexpectedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 5).Predict(context.Background(), "text")
	require.ErrorContains(t, err, "503")
}
