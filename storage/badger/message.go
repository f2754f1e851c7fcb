package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// MessageRepository implements storage.MessageRepository for BadgerDB.
type MessageRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(backend *Backend) (*MessageRepository, error) {
	idSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		return nil, err
	}

	return &MessageRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *MessageRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *MessageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddMessages adds one or more messages to storage.
func (r *MessageRepository) AddMessages(ctx context.Context, msgs ...*core.Message) ([]*core.Message, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, msg := range msgs {
			if msg.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				msg.Id = core.ID(nextID)
			}

			if msg.InsertedAt.IsZero() {
				msg.InsertedAt = time.Now().UTC()
			}
			msg.UpdatedAt = msg.InsertedAt

			key := makeMessageKey(msg.Id)
			if err := tx.Set(key, storage.MarshalMessage(msg)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return msgs, err
}

// GetMessage retrieves a single message by ID.
func (r *MessageRepository) GetMessage(ctx context.Context, id core.ID) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readMessage(tx, makeMessageKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetMessages retrieves multiple messages by their IDs.
// Missing messages are skipped without error.
func (r *MessageRepository) GetMessages(ctx context.Context, ids ...core.ID) ([]*core.Message, error) {
	results := make([]*core.Message, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			msg, err := r.readMessage(tx, makeMessageKey(id))
			if err != nil {
				return err
			}
			if msg != nil {
				results = append(results, msg)
			}
		}
		return nil
	}, false)
	return results, err
}

// HasMessage reports whether a message exists.
func (r *MessageRepository) HasMessage(ctx context.Context, id core.ID) (bool, error) {
	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeMessageKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// DeleteMessages removes messages by their IDs.
func (r *MessageRepository) DeleteMessages(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeMessageKey(id)
			msg, err := r.readMessage(tx, key)
			if err != nil {
				return err
			}
			if msg == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// MaxMessageID returns the highest assigned message ID.
func (r *MessageRepository) MaxMessageID(ctx context.Context) (core.ID, error) {
	var maxID core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(messagePrefix + ":")
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the largest possible key, then step back into the prefix.
		seek := makeMessageKey(core.ID(^uint64(0)))
		iter.Seek(seek)
		if iter.ValidForPrefix(opts.Prefix) {
			maxID = messageKeyID(iter.Item().Key())
		}
		return nil
	}, false)
	return maxID, err
}

// CountMessages returns the number of stored messages.
func (r *MessageRepository) CountMessages(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(messagePrefix + ":")
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

// ScanMessages visits messages with lo <= ID <= hi in ascending ID order.
func (r *MessageRepository) ScanMessages(ctx context.Context, lo, hi core.ID, visit func(*core.Message) (bool, error)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(messagePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeMessageKey(lo)); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if messageKeyID(item.Key()) > hi {
				return nil
			}
			var msg *core.Message
			err := item.Value(func(val []byte) error {
				var err error
				msg, err = storage.UnmarshalMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			keep, err := visit(msg)
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
		}
		return nil
	}, false)
}

// readMessage reads and decodes a message, returning nil when absent.
func (r *MessageRepository) readMessage(tx *badger.Txn, key []byte) (*core.Message, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msg *core.Message
	err = item.Value(func(val []byte) error {
		var err error
		msg, err = storage.UnmarshalMessage(val)
		return err
	})
	return msg, err
}
