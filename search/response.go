package search

import "github.com/poiesic/boardsearch/core"

// Problem describes one reason a query could not be (fully) executed.
// Problems are user-correctable conditions, reported together rather than
// failing fast on the first, so the caller can show them all at once.
type Problem struct {
	// Err is the sentinel classifying the problem, e.g. query.ErrAllTooShort.
	Err error

	// Terms lists the offending terms when the problem is term-specific.
	Terms []string
}

func (p Problem) Error() string { return p.Err.Error() }

func (p Problem) Unwrap() error { return p.Err }

// PageEntry is one hydrated row of a result page.
type PageEntry struct {
	Board   *core.Board
	Topic   *core.Topic
	Message *core.Message // the topic's anchor message

	// Relevance is the snapshot score the row was ranked with.
	Relevance float64

	// DisplayRelevance is recomputed at page render time from the row's own
	// posting recency. It may drift from Relevance as the snapshot ages.
	DisplayRelevance float64

	MatchCount int

	// SubjectHTML and PreviewHTML are markup-safe highlighted fragments.
	SubjectHTML string
	PreviewHTML string
}

// Response is the outcome of one search request.
//
// A response with Problems has no result page: the query never reached
// retrieval and nothing was cached. DidYouMean carries alternative terms
// when the advisor found any.
type Response struct {
	Problems   []Problem
	DidYouMean []string

	Page        []*PageEntry
	TotalCount  int
	Fingerprint string
}

// Failed reports whether the request stopped before retrieval.
func (r *Response) Failed() bool { return len(r.Problems) > 0 }
