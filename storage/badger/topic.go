package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// TopicRepository implements storage.TopicRepository for BadgerDB.
type TopicRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TopicRepository = (*TopicRepository)(nil)

// NewTopicRepository creates a new TopicRepository.
func NewTopicRepository(backend *Backend) (*TopicRepository, error) {
	idSeq, err := backend.GetSequence(topicIDSeq)
	if err != nil {
		return nil, err
	}

	return &TopicRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TopicRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *TopicRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddTopics adds one or more topics to storage.
func (r *TopicRepository) AddTopics(ctx context.Context, topics ...*core.Topic) ([]*core.Topic, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, topic := range topics {
			if topic.Id == 0 {
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
				topic.Id = core.ID(nextID)
			}

			topic.InsertedAt = time.Now().UTC()
			topic.UpdatedAt = topic.InsertedAt

			if err := tx.Set(makeTopicKey(topic.Id), storage.MarshalTopic(topic)); err != nil {
				return err
			}
			// Board index
			boardKey := makeTopicBoardKey(topic.BoardId, topic.Id)
			if err := tx.Set(boardKey, storage.MarshalID(topic.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return topics, err
}

// UpdateTopics updates existing topics.
func (r *TopicRepository) UpdateTopics(ctx context.Context, topics ...*core.Topic) ([]*core.Topic, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, topic := range topics {
			key := makeTopicKey(topic.Id)
			old, err := r.readTopic(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			topic.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalTopic(topic)); err != nil {
				return err
			}

			// Move the board index entry if the topic changed boards
			if old.BoardId != topic.BoardId {
				if err := tx.Delete(makeTopicBoardKey(old.BoardId, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeTopicBoardKey(topic.BoardId, topic.Id), storage.MarshalID(topic.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return topics, err
}

// GetTopic retrieves a single topic by ID.
func (r *TopicRepository) GetTopic(ctx context.Context, id core.ID) (*core.Topic, error) {
	var result *core.Topic
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readTopic(tx, makeTopicKey(id))
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

// GetTopics retrieves multiple topics by their IDs.
// Missing topics are skipped without error.
func (r *TopicRepository) GetTopics(ctx context.Context, ids ...core.ID) ([]*core.Topic, error) {
	results := make([]*core.Topic, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			topic, err := r.readTopic(tx, makeTopicKey(id))
			if err != nil {
				return err
			}
			if topic != nil {
				results = append(results, topic)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetTopicsByBoard retrieves every topic belonging to a board.
func (r *TopicRepository) GetTopicsByBoard(ctx context.Context, boardID core.ID) ([]*core.Topic, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialTopicBoardKey(boardID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			ids = append(ids, core.ID(topicBoardKeyTopicID(key)))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return r.GetTopics(ctx, ids...)
}

// DeleteTopics removes topics by their IDs.
func (r *TopicRepository) DeleteTopics(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeTopicKey(id)
			topic, err := r.readTopic(tx, key)
			if err != nil {
				return err
			}
			if topic == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(makeTopicBoardKey(topic.BoardId, topic.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readTopic reads and decodes a topic, returning nil when absent.
func (r *TopicRepository) readTopic(tx *badger.Txn, key []byte) (*core.Topic, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var topic *core.Topic
	err = item.Value(func(val []byte) error {
		var err error
		topic, err = storage.UnmarshalTopic(val)
		return err
	})
	return topic, err
}
