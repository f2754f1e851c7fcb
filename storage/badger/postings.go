package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// PostingsIndex implements storage.PostingsIndex for BadgerDB.
// Each posting is one composite key; posting lists are never stored as a
// single value, so updates touch only the IDs involved.
type PostingsIndex struct {
	backend *Backend
}

var _ storage.PostingsIndex = (*PostingsIndex)(nil)

// NewPostingsIndex creates a new PostingsIndex.
func NewPostingsIndex(backend *Backend) *PostingsIndex {
	return &PostingsIndex{backend: backend}
}

// Available reports whether indexed term lookup is supported.
func (p *PostingsIndex) Available() bool {
	return true
}

// AddPostings associates message IDs with a term.
func (p *PostingsIndex) AddPostings(ctx context.Context, term string, ids ...core.ID) error {
	return p.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Set(makePostingKey(term, id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// RemovePostings removes message IDs from a term's posting list.
func (p *PostingsIndex) RemovePostings(ctx context.Context, term string, ids ...core.ID) error {
	return p.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makePostingKey(term, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPostings returns up to limit message IDs for a term, ascending.
func (p *PostingsIndex) GetPostings(ctx context.Context, term string, limit int) ([]core.ID, error) {
	var ids []core.ID
	err := p.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPostingKey(term)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids = append(ids, postingKeyID(iter.Item().Key()))
			if limit > 0 && len(ids) >= limit {
				return nil
			}
		}
		return nil
	}, false)
	return ids, err
}

// PostingCount returns the number of postings for a term.
func (p *PostingsIndex) PostingCount(ctx context.Context, term string) (int, error) {
	count := 0
	err := p.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPostingKey(term)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DropAll removes every posting.
func (p *PostingsIndex) DropAll(ctx context.Context) error {
	return p.backend.DropPrefix([]byte(postingPrefix + ":"))
}
