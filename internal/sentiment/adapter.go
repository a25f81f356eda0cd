package sentiment

import (
	"fmt"
	"math"
	"strings"

	"NewsRanker/internal/domain"
)

var labelWeights = map[domain.SentimentLabel]float64{
	domain.LabelPositive: 1.0,
	domain.LabelNegative: -1.0,
	domain.LabelNeutral:  0.0,
}

// ParseLabel maps a model label onto the canonical set, ignoring case and surrounding spaces.
func ParseLabel(raw string) (domain.SentimentLabel, error) {
	label := domain.SentimentLabel(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := labelWeights[label]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSentimentLabel, raw)
	}
	return label, nil
}

// Normalize turns a prediction into a signed strength in [-1,1].
// The score is clamped to [0,1] before weighting.
func Normalize(prediction domain.SentimentPrediction) (float64, error) {
	label, err := ParseLabel(string(prediction.Label))
	if err != nil {
		return 0, err
	}

	score := prediction.Score
	switch {
	case score < 0 || math.IsNaN(score):
		score = 0
	case score > 1:
		score = 1
	}

	strength := score * labelWeights[label]
	if strength == 0 {
		// avoid -0 leaking into serialized output
		return 0, nil
	}
	return strength, nil
}
