package features

import (
	"math"

	"NewsRanker/internal/domain"
)

// Options configures the lexicons used by an Extractor.
type Options struct {
	EntityTerms  []string
	MarketVerbs  []string
	CountTickers bool
}

// DefaultOptions returns the built-in lexicons with ticker detection enabled.
func DefaultOptions() Options {
	return Options{
		EntityTerms:  DefaultEntityTerms(),
		MarketVerbs:  DefaultMarketVerbs(),
		CountTickers: true,
	}
}

// Extractor derives FeatureVectors from article text. It is immutable and safe for concurrent use.
type Extractor struct {
	entities     *Lexicon
	verbs        *Lexicon
	countTickers bool
}

// NewExtractor compiles the configured lexicons.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{
		entities:     NewLexicon(opts.EntityTerms, false),
		verbs:        NewLexicon(opts.MarketVerbs, true),
		countTickers: opts.CountTickers,
	}
}

// Extract computes the feature vector of article against corpus. Empty text
// yields a zero vector; a nil or empty corpus yields full novelty.
func (e *Extractor) Extract(article domain.Article, corpus *Corpus) domain.FeatureVector {
	raw := Tokenize(article.Text())
	if len(raw) == 0 {
		return domain.FeatureVector{}
	}
	lower := lowerAll(raw)
	total := float64(len(lower))

	// stopword-only text has nothing to compare and is not novel
	novelty := 0.0
	if set := tokenSet(lower); len(set) > 0 {
		novelty = clampUnit(1 - corpus.MaxSimilarity(article.ID, set))
	}

	return domain.FeatureVector{
		EntityDensity:     clampUnit(float64(e.countEntities(raw, lower)) / total),
		MarketVerbDensity: clampUnit(float64(e.verbs.Count(lower)) / total),
		NoveltyScore:      novelty,
	}
}

func (e *Extractor) countEntities(raw, lower []string) int {
	count := 0
	for i := 0; i < len(lower); {
		if n := e.entities.MatchAt(lower, i); n > 0 {
			count++
			i += n
			continue
		}
		if e.countTickers && isTicker(raw[i]) {
			count++
		}
		i++
	}
	return count
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
