package storage

import (
	"context"

	"github.com/poiesic/boardsearch/core"
)

// UnindexedPostings is the PostingsIndex of a store without a term index.
// Available reports false and every operation fails with ErrIndexUnavailable,
// so the engine selects the brute-force retrieval strategy.
type UnindexedPostings struct{}

var _ PostingsIndex = UnindexedPostings{}

func (UnindexedPostings) Available() bool { return false }

func (UnindexedPostings) AddPostings(ctx context.Context, term string, ids ...core.ID) error {
	return ErrIndexUnavailable
}

func (UnindexedPostings) RemovePostings(ctx context.Context, term string, ids ...core.ID) error {
	return ErrIndexUnavailable
}

func (UnindexedPostings) GetPostings(ctx context.Context, term string, limit int) ([]core.ID, error) {
	return nil, ErrIndexUnavailable
}

func (UnindexedPostings) PostingCount(ctx context.Context, term string) (int, error) {
	return 0, ErrIndexUnavailable
}

func (UnindexedPostings) DropAll(ctx context.Context) error {
	return ErrIndexUnavailable
}
