package features

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultEntityTerms lists financial instruments and macro terms counted as entities.
func DefaultEntityTerms() []string {
	return []string{
		"stocks",
		"shares",
		"bonds",
		"federal reserve",
		"interest rates",
		"inflation",
		"gdp",
		"earnings",
		"dividend",
		"ipo",
		"buyback",
	}
}

// DefaultMarketVerbs lists action verbs that typically move markets.
func DefaultMarketVerbs() []string {
	return []string{
		"acquire",
		"merge",
		"launch",
		"cut",
		"raise",
		"lower",
		"approve",
		"reject",
		"investigate",
		"settle",
		"expand",
		"reduce",
		"forecast",
		"warn",
		"outperform",
		"downgrade",
		"default",
	}
}

// Lexicon matches single- and multi-word terms against a token stream.
type Lexicon struct {
	// first token -> candidate phrases, longest first
	byFirst map[string][][]string
	size    int
}

// NewLexicon builds a case-insensitive lexicon. With inflect set, the last word
// of every term also matches its -s, -es, -d, -ed and -ing forms.
func NewLexicon(terms []string, inflect bool) *Lexicon {
	lex := &Lexicon{byFirst: map[string][][]string{}}
	seen := map[string]struct{}{}

	for _, term := range terms {
		words := Tokenize(strings.ToLower(term))
		if len(words) == 0 {
			continue
		}
		lex.size++

		forms := []string{words[len(words)-1]}
		if inflect {
			forms = inflections(forms[0])
		}
		for _, form := range forms {
			phrase := append(append([]string{}, words[:len(words)-1]...), form)
			key := strings.Join(phrase, " ")
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			lex.byFirst[phrase[0]] = append(lex.byFirst[phrase[0]], phrase)
		}
	}

	for first := range lex.byFirst {
		phrases := lex.byFirst[first]
		sort.SliceStable(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })
	}

	return lex
}

// Len reports how many terms were configured.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return l.size
}

// MatchAt returns the number of tokens consumed by the longest term starting at
// tokens[i], or zero when nothing matches.
func (l *Lexicon) MatchAt(tokens []string, i int) int {
	if l == nil || i >= len(tokens) {
		return 0
	}
	for _, phrase := range l.byFirst[tokens[i]] {
		if i+len(phrase) > len(tokens) {
			continue
		}
		matched := true
		for k := 1; k < len(phrase); k++ {
			if tokens[i+k] != phrase[k] {
				matched = false
				break
			}
		}
		if matched {
			return len(phrase)
		}
	}
	return 0
}

// Count returns the number of non-overlapping term matches in tokens.
func (l *Lexicon) Count(tokens []string) int {
	count := 0
	for i := 0; i < len(tokens); {
		if n := l.MatchAt(tokens, i); n > 0 {
			count++
			i += n
			continue
		}
		i++
	}
	return count
}

func inflections(word string) []string {
	forms := []string{word, word + "s", word + "es", word + "d", word + "ed", word + "ing"}
	if strings.HasSuffix(word, "e") {
		forms = append(forms, strings.TrimSuffix(word, "e")+"ing")
	}
	if doublesFinalConsonant(word) {
		last := word[len(word)-1:]
		forms = append(forms, word+last+"ed", word+last+"ing")
	}
	return forms
}

// doublesFinalConsonant approximates the CVC rule for short verbs such as cut or plan.
func doublesFinalConsonant(word string) bool {
	runes := []rune(word)
	n := len(runes)
	if n < 3 || n > 4 {
		return false
	}
	return !isVowel(runes[n-1]) && isVowel(runes[n-2]) && !isVowel(runes[n-3]) &&
		!strings.ContainsRune("wxy", runes[n-1])
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiou", unicode.ToLower(r))
}
