package query

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/boardsearch/core"
)

// SplitWords splits already-normalized text into words, discarding quote,
// dash and apostrophe residue at word edges.
func SplitWords(text string) []string {
	var words []string
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, trimEdges)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Tokens extracts the indexable tokens of a document field: normalized words
// minus stop words and under-length fragments, deduplicated. This is the
// shared vocabulary of the postings index and indexed retrieval; both sides
// must tokenize identically or lookups silently miss.
func Tokens(text string, policy core.SearchPolicy) []string {
	stop := make(map[string]bool, len(policy.StopWords))
	for _, w := range policy.StopWords {
		stop[w] = true
	}
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range SplitWords(normalize(text)) {
		if stop[w] || utf8.RuneCountInString(w) < policy.MinTermLength || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}
