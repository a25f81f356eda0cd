package features

import (
	"NewsRanker/internal/domain"
)

type corpusEntry struct {
	id  string
	set map[string]struct{}
}

// Corpus is the reference set novelty is measured against. It is fully built
// by NewCorpus and never modified afterwards, so it can be shared across goroutines.
type Corpus struct {
	entries []corpusEntry
}

// NewCorpus snapshots the token sets of articles.
func NewCorpus(articles ...domain.Article) *Corpus {
	c := &Corpus{entries: make([]corpusEntry, 0, len(articles))}
	for _, article := range articles {
		set := tokenSet(lowerAll(Tokenize(article.Text())))
		if len(set) == 0 {
			continue
		}
		c.entries = append(c.entries, corpusEntry{id: article.ID, set: set})
	}
	return c
}

// Len returns the number of non-empty documents in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// MaxSimilarity returns the highest Jaccard similarity between set and any
// corpus document whose ID differs from id.
func (c *Corpus) MaxSimilarity(id string, set map[string]struct{}) float64 {
	if c == nil || len(set) == 0 {
		return 0
	}
	best := 0.0
	for _, entry := range c.entries {
		if entry.id == id {
			continue
		}
		if sim := jaccard(set, entry.set); sim > best {
			best = sim
		}
	}
	return best
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
