package scoring

import (
	"fmt"
	"math"
	"strings"

	"NewsRanker/internal/domain"
)

// Strategy selects how a ScoredArticle's score is computed.
type Strategy string

const (
	MarketImportance Strategy = "market_importance"
	Sentiment        Strategy = "sentiment"
)

// Default is used when the caller passes an empty selector.
const Default = MarketImportance

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{MarketImportance, Sentiment}
}

// ParseStrategy resolves a caller-provided selector. An empty selector means the
// default; anything unrecognized is an error rather than a silent fallback.
func ParseStrategy(raw string) (Strategy, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Default, nil
	}
	for _, s := range Strategies() {
		if Strategy(name) == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s, %s)", domain.ErrUnknownRankingStrategy, raw, MarketImportance, Sentiment)
}

// Inputs gathers everything a strategy may score on.
type Inputs struct {
	SentimentStrength float64
	Features          domain.FeatureVector
	Credibility       float64
}

// Score applies the strategy. It panics only for a Strategy value that did not
// come from ParseStrategy or the declared constants.
func (s Strategy) Score(in Inputs, w Weights) float64 {
	switch s {
	case MarketImportance:
		return marketImpact(in, w)
	case Sentiment:
		return in.SentimentStrength
	default:
		panic(fmt.Sprintf("scoring: unhandled strategy %q", string(s)))
	}
}

func marketImpact(in Inputs, w Weights) float64 {
	return w.Sentiment*math.Abs(in.SentimentStrength) +
		w.EntityDensity*in.Features.EntityDensity +
		w.MarketVerbDensity*in.Features.MarketVerbDensity +
		w.Novelty*in.Features.NoveltyScore +
		w.Credibility*in.Credibility
}
