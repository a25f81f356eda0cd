package credibility

import (
	"fmt"
	"strings"
)

// DefaultScore is used for sources missing from the table.
const DefaultScore = 0.5

// Table maps source identifiers to credibility scores. It is read-only after New.
type Table struct {
	entries  map[string]float64
	fallback float64
}

// DefaultEntries returns the built-in credibility map for major financial outlets.
func DefaultEntries() map[string]float64 {
	return map[string]float64{
		"bloomberg":       0.95,
		"reuters":         0.93,
		"financial times": 0.90,
		"cnbc":            0.85,
	}
}

// New copies entries into an immutable table. Keys are matched case-insensitively.
func New(entries map[string]float64, fallback float64) (*Table, error) {
	if !inUnitRange(fallback) {
		return nil, fmt.Errorf("default credibility %v outside [0,1]", fallback)
	}

	normalized := make(map[string]float64, len(entries))
	for source, score := range entries {
		if !inUnitRange(score) {
			return nil, fmt.Errorf("credibility for %q is %v, outside [0,1]", source, score)
		}
		key := normalizeKey(source)
		if key == "" {
			return nil, fmt.Errorf("credibility table has an empty source name")
		}
		normalized[key] = score
	}

	return &Table{entries: normalized, fallback: fallback}, nil
}

// Lookup returns the score for source and whether the source was known.
func (t *Table) Lookup(source string) (float64, bool) {
	if t == nil {
		return DefaultScore, false
	}
	if score, ok := t.entries[normalizeKey(source)]; ok {
		return score, true
	}
	return t.fallback, false
}

// Default is the score returned for unknown sources.
func (t *Table) Default() float64 {
	if t == nil {
		return DefaultScore
	}
	return t.fallback
}

func normalizeKey(source string) string {
	return strings.ToLower(strings.Join(strings.Fields(source), " "))
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
