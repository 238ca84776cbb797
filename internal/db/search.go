package db

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "is": true,
	"it": true, "and": true, "or": true, "with": true, "from": true,
	"by": true, "this": true, "that": true, "as": true, "be": true,
}

// SearchTerms preprocesses a title query. Splits on whitespace, trims
// punctuation, and drops stopwords and words shorter than 2 chars. A query
// made only of stopwords is kept whole so "The Plan" still finds something.
func SearchTerms(query string) []string {
	var all, filtered []string
	for _, w := range strings.Fields(query) {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if trimmed == "" {
			continue
		}
		all = append(all, trimmed)
		if len(trimmed) < 2 || stopwords[strings.ToLower(trimmed)] {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	if len(filtered) == 0 {
		return all
	}
	return filtered
}

// escapeLike escapes LIKE wildcards; pair with ESCAPE '\'
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
