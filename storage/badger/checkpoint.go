package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// CheckpointRepository implements storage.CheckpointRepository for BadgerDB.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a new CheckpointRepository.
func NewCheckpointRepository(backend *Backend) *CheckpointRepository {
	return &CheckpointRepository{backend: backend}
}

// GetCheckpoint retrieves a checkpoint by kind.
func (r *CheckpointRepository) GetCheckpoint(ctx context.Context, kind string) (*core.Checkpoint, error) {
	var result *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(kind))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalCheckpoint(val)
			return err
		})
	}, false)
	return result, err
}

// SetCheckpoint stores a checkpoint, overwriting any previous value.
func (r *CheckpointRepository) SetCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey(checkpoint.Kind), storage.MarshalCheckpoint(checkpoint)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
