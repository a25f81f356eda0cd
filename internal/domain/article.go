package domain

import (
	"strings"
	"time"
)

// Article is a core entity describing a news item fetched from providers.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Text joins description and content into the body used for feature extraction.
func (a Article) Text() string {
	return strings.TrimSpace(strings.TrimSpace(a.Description) + " " + strings.TrimSpace(a.Content))
}

// SentimentLabel is the polarity emitted by the sentiment model.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNegative SentimentLabel = "NEGATIVE"
	LabelNeutral  SentimentLabel = "NEUTRAL"
)

// SentimentPrediction is the opaque (label, score) pair produced per article.
type SentimentPrediction struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// FeatureVector holds text features, each normalized to [0,1].
type FeatureVector struct {
	EntityDensity     float64 `json:"entity_density"`
	MarketVerbDensity float64 `json:"market_verb_density"`
	NoveltyScore      float64 `json:"novelty_score"`
}

// ScoredArticle is a ranked result. Score holds the market impact or the
// sentiment rank depending on Strategy.
type ScoredArticle struct {
	Article
	Sentiment         SentimentPrediction `json:"sentiment"`
	Features          FeatureVector       `json:"features"`
	SentimentStrength float64             `json:"sentiment_strength"`
	Credibility       float64             `json:"source_credibility"`
	Strategy          string              `json:"ranking_strategy"`
	Score             float64             `json:"score"`
	Rank              int                 `json:"rank"`
}
