package features

import (
	"strings"
	"unicode"
)

// Tokenize splits text into word tokens, preserving case. Apostrophes inside a
// word are kept ("fed's"), everything else that is not a letter or digit separates tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})

	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'’")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func lowerAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = strings.ToLower(tok)
	}
	return out
}

// isTicker reports whether a raw token looks like an exchange ticker (2-5 uppercase ASCII letters).
func isTicker(tok string) bool {
	if len(tok) < 2 || len(tok) > 5 {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < 'A' || tok[i] > 'Z' {
			return false
		}
	}
	return true
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"were": {}, "will": {}, "with": {},
}

// tokenSet returns the distinct non-stopword tokens of an already lowercased stream.
func tokenSet(lower []string) map[string]struct{} {
	set := make(map[string]struct{}, len(lower))
	for _, tok := range lower {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}
