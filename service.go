// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package boardsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/boardsearch/cache"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/indexing"
	"github.com/poiesic/boardsearch/query"
	"github.com/poiesic/boardsearch/search"
	"github.com/poiesic/boardsearch/storage"
	"github.com/poiesic/boardsearch/storage/badger"
)

// Service is the root aggregate: one opened store with its repositories,
// from which engines and indexing pipelines are constructed.
type Service struct {
	backend        *badger.Backend
	boardRepo      storage.BoardRepository
	topicRepo      storage.TopicRepository
	messageRepo    storage.MessageRepository
	postings       storage.PostingsIndex
	checkpointRepo storage.CheckpointRepository
	indexer        *indexing.Pipeline
	policy         core.SearchPolicy
	logger         *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	inMemory bool
	policy   core.SearchPolicy
}

// WithInMemory opens the store in memory, for tests and ephemeral use.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) { o.inMemory = true }
}

// WithPolicy sets the search policy shared by indexing and engines created
// from this service.
func WithPolicy(policy core.SearchPolicy) ServiceOption {
	return func(o *serviceOptions) { o.policy = policy }
}

// Open opens (or creates) a store at filePath and wires the repositories.
func Open(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{policy: core.DefaultPolicy()}
	for _, opt := range opts {
		opt(options)
	}
	if err := core.ValidatePolicy(options.policy); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	boardRepo, err := badger.NewBoardRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	topicRepo, err := badger.NewTopicRepository(backend)
	if err != nil {
		boardRepo.Close()
		backend.Close()
		return nil, err
	}

	messageRepo, err := badger.NewMessageRepository(backend)
	if err != nil {
		topicRepo.Close()
		boardRepo.Close()
		backend.Close()
		return nil, err
	}

	postings := badger.NewPostingsIndex(backend)
	checkpointRepo := badger.NewCheckpointRepository(backend)

	indexer, err := indexing.NewPipeline(messageRepo, postings, checkpointRepo,
		indexing.WithPolicy(options.policy))
	if err != nil {
		messageRepo.Close()
		topicRepo.Close()
		boardRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:        backend,
		boardRepo:      boardRepo,
		topicRepo:      topicRepo,
		messageRepo:    messageRepo,
		postings:       postings,
		checkpointRepo: checkpointRepo,
		indexer:        indexer,
		policy:         options.policy,
		logger:         slog.Default(),
	}, nil
}

// Close releases the pipelines, repositories and the backend.
func (s *Service) Close() error {
	s.indexer.Release()

	if err := s.messageRepo.Close(); err != nil {
		s.logger.Error("error closing message repository", "err", err)
		return err
	}
	if err := s.topicRepo.Close(); err != nil {
		s.logger.Error("error closing topic repository", "err", err)
		return err
	}
	if err := s.boardRepo.Close(); err != nil {
		s.logger.Error("error closing board repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *Service) BoardRepository() storage.BoardRepository { return s.boardRepo }

func (s *Service) TopicRepository() storage.TopicRepository { return s.topicRepo }

func (s *Service) MessageRepository() storage.MessageRepository { return s.messageRepo }

func (s *Service) PostingsIndex() storage.PostingsIndex { return s.postings }

func (s *Service) CheckpointRepository() storage.CheckpointRepository { return s.checkpointRepo }

// NewEngine builds a search engine over this store with an in-process
// result cache.
func (s *Service) NewEngine(opts ...search.EngineOption) (*search.Engine, error) {
	resultCache, err := cache.New(cache.NewMemorySessionStore())
	if err != nil {
		return nil, err
	}
	opts = append([]search.EngineOption{search.WithPolicy(s.policy)}, opts...)
	return search.NewEngine(s.boardRepo, s.topicRepo, s.messageRepo, s.postings, resultCache, opts...)
}

// NewIndexingPipeline builds an indexing pipeline over this store.
func (s *Service) NewIndexingPipeline(opts ...indexing.Option) (*indexing.Pipeline, error) {
	opts = append([]indexing.Option{indexing.WithPolicy(s.policy)}, opts...)
	return indexing.NewPipeline(s.messageRepo, s.postings, s.checkpointRepo, opts...)
}

// PostMessages stores messages, maintains the owning topics' aggregates
// (anchor, last activity, reply count) and indexes the new content.
// Every message must reference an existing topic.
func (s *Service) PostMessages(ctx context.Context, msgs ...*core.Message) ([]*core.Message, error) {
	for _, msg := range msgs {
		topic, err := s.topicRepo.GetTopic(ctx, msg.TopicId)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: topic %d", core.ErrMissingTopic, msg.TopicId)
		}
		if err != nil {
			return nil, err
		}
		if msg.BoardId == 0 {
			msg.BoardId = topic.BoardId
		}
		if msg.PostedAt.IsZero() {
			msg.PostedAt = time.Now()
		}
		if err := core.ValidateMessage(msg); err != nil {
			return nil, err
		}
	}

	msgs, err := s.messageRepo.AddMessages(ctx, msgs...)
	if err != nil {
		return nil, err
	}

	for _, msg := range msgs {
		topic, err := s.topicRepo.GetTopic(ctx, msg.TopicId)
		if err != nil {
			return nil, err
		}
		if topic.FirstMsgId == 0 {
			topic.FirstMsgId = msg.Id
		} else {
			topic.ReplyCount++
		}
		if msg.Id > topic.LastMsgId {
			topic.LastMsgId = msg.Id
		}
		if _, err := s.topicRepo.UpdateTopics(ctx, topic); err != nil {
			return nil, err
		}
	}

	if err := s.indexer.IndexMessages(ctx, msgs...); err != nil {
		return nil, err
	}
	return msgs, nil
}

// RemoveMessages deletes messages, unlinks their postings and adjusts the
// owning topics' reply counts.
func (s *Service) RemoveMessages(ctx context.Context, ids ...core.ID) error {
	msgs, err := s.messageRepo.GetMessages(ctx, ids...)
	if err != nil {
		return err
	}
	if err := s.indexer.RemoveMessages(ctx, msgs...); err != nil {
		return err
	}
	if err := s.messageRepo.DeleteMessages(ctx, ids...); err != nil {
		return err
	}

	for _, msg := range msgs {
		topic, err := s.topicRepo.GetTopic(ctx, msg.TopicId)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if topic.FirstMsgId != msg.Id && topic.ReplyCount > 0 {
			topic.ReplyCount--
		}
		if _, err := s.topicRepo.UpdateTopics(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

// Vocabulary samples the corpus vocabulary, up to max terms, for the
// dictionary suggestion provider.
func (s *Service) Vocabulary(ctx context.Context, max int) ([]string, error) {
	if max <= 0 {
		max = 10000
	}
	hi, err := s.messageRepo.MaxMessageID(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, max)
	var vocab []string
	err = s.messageRepo.ScanMessages(ctx, 1, hi, func(msg *core.Message) (bool, error) {
		for _, t := range query.Tokens(msg.Subject, s.policy) {
			if !seen[t] {
				seen[t] = true
				vocab = append(vocab, t)
			}
		}
		for _, t := range query.Tokens(msg.Body, s.policy) {
			if !seen[t] {
				seen[t] = true
				vocab = append(vocab, t)
			}
		}
		return len(vocab) < max, nil
	})
	if err != nil {
		return nil, err
	}
	return vocab, nil
}
