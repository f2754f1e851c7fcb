package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// BoardRepository implements storage.BoardRepository for BadgerDB.
type BoardRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.BoardRepository = (*BoardRepository)(nil)

// NewBoardRepository creates a new BoardRepository.
func NewBoardRepository(backend *Backend) (*BoardRepository, error) {
	idSeq, err := backend.GetSequence(boardIDSeq)
	if err != nil {
		return nil, err
	}

	return &BoardRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *BoardRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *BoardRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddBoards adds one or more boards to storage.
func (r *BoardRepository) AddBoards(ctx context.Context, boards ...*core.Board) ([]*core.Board, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, board := range boards {
			if board.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				board.Id = core.ID(nextID)
			}

			board.InsertedAt = time.Now().UTC()
			board.UpdatedAt = board.InsertedAt

			if err := tx.Set(makeBoardKey(board.Id), storage.MarshalBoard(board)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return boards, err
}

// GetBoard retrieves a single board by ID.
func (r *BoardRepository) GetBoard(ctx context.Context, id core.ID) (*core.Board, error) {
	var result *core.Board
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeBoardKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalBoard(val)
			return err
		})
	}, false)
	return result, err
}

// AllBoards retrieves every board, ordered by ID.
func (r *BoardRepository) AllBoards(ctx context.Context) ([]*core.Board, error) {
	var results []*core.Board
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(boardPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				board, err := storage.UnmarshalBoard(val)
				if err != nil {
					return err
				}
				results = append(results, board)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteBoards removes boards by their IDs.
func (r *BoardRepository) DeleteBoards(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeBoardKey(id)
			if _, err := tx.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
