package scoring

import (
	"fmt"
	"math"
)

const weightSumTolerance = 1e-9

// Weights are the MarketImportance coefficients.
type Weights struct {
	Sentiment         float64 `yaml:"sentiment"`
	EntityDensity     float64 `yaml:"entityDensity"`
	MarketVerbDensity float64 `yaml:"marketVerbDensity"`
	Novelty           float64 `yaml:"novelty"`
	Credibility       float64 `yaml:"credibility"`
}

// DefaultWeights weights sentiment magnitude highest and source credibility lowest.
func DefaultWeights() Weights {
	return Weights{
		Sentiment:         0.3,
		EntityDensity:     0.25,
		MarketVerbDensity: 0.2,
		Novelty:           0.15,
		Credibility:       0.1,
	}
}

// Validate keeps market impact bounded to [0,1]: weights must be non-negative and sum to 1.
func (w Weights) Validate() error {
	parts := []float64{w.Sentiment, w.EntityDensity, w.MarketVerbDensity, w.Novelty, w.Credibility}
	sum := 0.0
	for _, p := range parts {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("weights must be non-negative, got %+v", w)
		}
		sum += p
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %.6f", sum)
	}
	return nil
}
