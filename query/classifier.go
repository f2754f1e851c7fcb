package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/boardsearch/core"
)

// Term is a single classified search term.
type Term struct {
	Text   string
	Phrase bool
}

// OrGroup is one AND-combined branch of a top-level OR search. Excluded
// terms are AND-NOT within the group.
type OrGroup struct {
	Include []Term
	Exclude []Term
}

// Classified is the outcome of term classification.
type Classified struct {
	// Groups is the retrieval contract: OR across groups, AND within.
	Groups []OrGroup

	// Included are the surviving included terms, first-seen order.
	Included []Term

	// Blacklisted records terms ignored due to the stop-word list,
	// for error reporting.
	Blacklisted []string

	// TooShort records terms ignored for being under the minimum length.
	TooShort []string
}

// Classify filters and partitions a parsed query according to policy.
//
// Rules are applied in order: edge trimming, stop-word removal, minimum
// length, deduplication preserving first-seen order, truncation to the
// term cap. Included terms that also appear excluded are treated as
// excluded. The survivors are partitioned into OrGroups by search type
// (ALL: one group with every term; ANY: one single-term group per term)
// and every exclusion is appended to every group.
//
// Returns ErrEmptyQuery, wrapped with the dominant sub-reason, when no
// included term survives.
func Classify(parsed Parsed, searchType core.SearchType, policy core.SearchPolicy) (Classified, error) {
	stop := make(map[string]bool, len(policy.StopWords))
	for _, w := range policy.StopWords {
		stop[w] = true
	}

	var c Classified

	excluded := cleanTerms(termList(parsed.ExcludedWords, parsed.ExcludedPhrases), stop, policy.MinTermLength, nil)
	excludedSet := make(map[string]bool, len(excluded))
	for _, t := range excluded {
		excludedSet[t.Text] = true
	}

	included := cleanTerms(termList(parsed.Words, parsed.Phrases), stop, policy.MinTermLength, &c)

	hadIncludes := len(included) > 0
	kept := included[:0]
	for _, t := range included {
		if excludedSet[t.Text] {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > policy.MaxTerms {
		kept = kept[:policy.MaxTerms]
	}
	c.Included = kept

	if len(kept) == 0 {
		switch {
		case len(c.Blacklisted) > 0:
			return c, fmt.Errorf("%w: %w", ErrEmptyQuery, ErrAllBlacklisted)
		case len(c.TooShort) > 0:
			return c, fmt.Errorf("%w: %w", ErrEmptyQuery, ErrAllTooShort)
		case hadIncludes:
			return c, fmt.Errorf("%w: %w", ErrEmptyQuery, ErrAllExcluded)
		default:
			return c, ErrEmptyQuery
		}
	}

	if searchType == core.SearchTypeAny {
		for _, t := range kept {
			c.Groups = append(c.Groups, OrGroup{Include: []Term{t}, Exclude: excluded})
		}
	} else {
		c.Groups = []OrGroup{{Include: kept, Exclude: excluded}}
	}

	return c, nil
}

// termList merges words and phrases into a single ordered term slice.
func termList(words, phrases []string) []Term {
	terms := make([]Term, 0, len(words)+len(phrases))
	for _, p := range phrases {
		terms = append(terms, Term{Text: p, Phrase: true})
	}
	for _, w := range words {
		terms = append(terms, Term{Text: w})
	}
	return terms
}

// cleanTerms trims, filters and deduplicates terms. When c is non-nil the
// drop reasons are recorded on it; exclusions are filtered silently.
func cleanTerms(terms []Term, stop map[string]bool, minLen int, c *Classified) []Term {
	seen := make(map[string]bool, len(terms))
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		t.Text = strings.TrimSpace(strings.Trim(t.Text, trimEdges))
		if t.Text == "" {
			continue
		}
		if stop[t.Text] {
			if c != nil {
				c.Blacklisted = append(c.Blacklisted, t.Text)
			}
			continue
		}
		if utf8.RuneCountInString(t.Text) < minLen {
			if c != nil {
				c.TooShort = append(c.TooShort, t.Text)
			}
			continue
		}
		if seen[t.Text] {
			continue
		}
		seen[t.Text] = true
		out = append(out, t)
	}
	return out
}
