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

package indexing

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/query"
	"github.com/poiesic/boardsearch/storage"
)

// checkpointKind is the progress marker written by incremental runs.
const checkpointKind = "postings"

// batchSize is how many messages one worker tokenizes per task.
const batchSize = 256

// Pipeline maintains the postings index. It tokenizes message subjects and
// bodies with the same policy the query side classifies with, and writes
// one posting per (term, message). Incremental runs resume from the last
// checkpoint; Rebuild drops everything and reindexes from scratch.
type Pipeline struct {
	messages    storage.MessageRepository
	postings    storage.PostingsIndex
	checkpoints storage.CheckpointRepository
	pool        *ants.Pool
	policy      core.SearchPolicy
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent tokenization.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithPolicy sets the tokenization policy. Must match the policy the
// search engine runs with, or indexed lookups will miss.
func WithPolicy(policy core.SearchPolicy) Option {
	return func(p *Pipeline) error {
		if err := core.ValidatePolicy(policy); err != nil {
			return err
		}
		p.policy = policy
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an indexing pipeline.
func NewPipeline(
	messages storage.MessageRepository,
	postings storage.PostingsIndex,
	checkpoints storage.CheckpointRepository,
	opts ...Option,
) (*Pipeline, error) {
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if postings == nil || !postings.Available() {
		return nil, ErrPostingsRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		messages:    messages,
		postings:    postings,
		checkpoints: checkpoints,
		pool:        pool,
		policy:      core.DefaultPolicy(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Release frees the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// IndexMessages writes postings for the given messages. Safe to call with
// already-indexed messages; postings are idempotent.
func (p *Pipeline) IndexMessages(ctx context.Context, msgs ...*core.Message) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for start := 0; start < len(msgs); start += batchSize {
		end := start + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		batch := msgs[start:end]
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.indexBatch(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()
	return firstErr
}

// RemoveMessages deletes the postings of messages, for message deletion.
// The messages must still carry their original subject and body, since the
// terms to unlink are recomputed from the content.
func (p *Pipeline) RemoveMessages(ctx context.Context, msgs ...*core.Message) error {
	for _, msg := range msgs {
		for _, term := range p.tokenize(msg) {
			if err := p.postings.RemovePostings(ctx, term, msg.Id); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run indexes every message past the last checkpoint and advances it.
// Returns the number of messages indexed.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	lo := core.ID(1)
	cp, err := p.checkpoints.GetCheckpoint(ctx, checkpointKind)
	if err == nil {
		lo = cp.LastMsgId + 1
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	hi, err := p.messages.MaxMessageID(ctx)
	if err != nil {
		return 0, err
	}
	if hi < lo {
		return 0, nil
	}

	indexed := 0
	batch := make([]*core.Message, 0, batchSize)
	last := core.ID(0)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.IndexMessages(ctx, batch...); err != nil {
			return err
		}
		indexed += len(batch)
		batch = batch[:0]
		return p.checkpoints.SetCheckpoint(ctx, &core.Checkpoint{
			Kind:      checkpointKind,
			LastMsgId: last,
			UpdatedAt: time.Now(),
		})
	}

	err = p.messages.ScanMessages(ctx, lo, hi, func(msg *core.Message) (bool, error) {
		batch = append(batch, msg)
		last = msg.Id
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	if err != nil {
		return indexed, err
	}
	if err := flush(); err != nil {
		return indexed, err
	}

	p.logger.Info("incremental indexing complete", "indexed", indexed, "last_msg_id", last)
	return indexed, nil
}

// Rebuild drops the whole index and reindexes every message.
func (p *Pipeline) Rebuild(ctx context.Context) (int, error) {
	p.logger.Info("dropping postings index for rebuild")
	if err := p.postings.DropAll(ctx); err != nil {
		return 0, err
	}
	if err := p.checkpoints.SetCheckpoint(ctx, &core.Checkpoint{
		Kind:      checkpointKind,
		LastMsgId: 0,
		UpdatedAt: time.Now(),
	}); err != nil {
		return 0, err
	}
	return p.Run(ctx)
}

func (p *Pipeline) indexBatch(ctx context.Context, msgs []*core.Message) error {
	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, term := range p.tokenize(msg) {
			if err := p.postings.AddPostings(ctx, term, msg.Id); err != nil {
				return err
			}
		}
	}
	return nil
}

// tokenize produces the index terms of one message: subject and body
// vocabulary, merged.
func (p *Pipeline) tokenize(msg *core.Message) []string {
	terms := query.Tokens(msg.Subject, p.policy)
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[t] = true
	}
	for _, t := range query.Tokens(msg.Body, p.policy) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}
