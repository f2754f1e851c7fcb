package search

import (
	"context"
	"time"
)

// Monitor observes the phases of a search request. Implementations must be
// safe for concurrent use; hooks are called on the request goroutine and
// should return quickly.
type Monitor interface {
	// QueryClassified fires after parsing and classification, with the
	// number of surviving OR groups.
	QueryClassified(ctx context.Context, rawText string, groups int)

	// CacheLookup fires after the result cache was consulted.
	CacheLookup(ctx context.Context, fingerprint string, hit bool)

	// RetrievalDone fires after a backend produced candidates.
	RetrievalDone(ctx context.Context, backend string, candidates int, truncated bool, elapsed time.Duration)

	// SearchDone fires once per request, successful or not.
	SearchDone(ctx context.Context, total int, err error, elapsed time.Duration)
}

// NoopMonitor is a Monitor that does nothing.
type NoopMonitor struct{}

var _ Monitor = NoopMonitor{}

func (NoopMonitor) QueryClassified(ctx context.Context, rawText string, groups int) {}

func (NoopMonitor) CacheLookup(ctx context.Context, fingerprint string, hit bool) {}

func (NoopMonitor) RetrievalDone(ctx context.Context, backend string, candidates int, truncated bool, elapsed time.Duration) {
}

func (NoopMonitor) SearchDone(ctx context.Context, total int, err error, elapsed time.Duration) {}
