package suggest

import "context"

// Provider proposes alternative search terms for a query that yielded no
// results. Implementations must be thread-safe for concurrent use.
type Provider interface {
	// Alternatives returns replacement terms for the given query terms,
	// best first. An empty slice means the provider has nothing to offer;
	// that is not an error.
	Alternatives(ctx context.Context, terms []string) ([]string, error)
}
