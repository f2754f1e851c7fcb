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

package search

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// BruteForce retrieves candidates by scanning stored messages and applying
// the query predicate to each row. The ID range is split into shards scanned
// concurrently on a worker pool.
//
// Scanning starts with the most recent slice of the ID space and widens to
// the full range only when the first pass comes up short, so fresh content
// is found without paying for a full scan on every query.
type BruteForce struct {
	messages storage.MessageRepository
	pool     *ants.Pool
	shards   int
	logger   *slog.Logger
}

// NewBruteForce creates a brute-force backend with its own worker pool.
// A shards value <= 0 defaults to the CPU count.
func NewBruteForce(messages storage.MessageRepository, shards int, logger *slog.Logger) (*BruteForce, error) {
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	if shards <= 0 {
		shards = runtime.NumCPU()
	}
	pool, err := ants.NewPool(shards)
	if err != nil {
		return nil, err
	}
	return &BruteForce{messages: messages, pool: pool, shards: shards, logger: logger}, nil
}

// Close releases the worker pool.
func (b *BruteForce) Close() error {
	b.pool.Release()
	return nil
}

func (b *BruteForce) Name() string { return "brute-force" }

// Retrieve scans for matching topics. Candidates come back in ascending
// anchor-message order regardless of shard scheduling.
func (b *BruteForce) Retrieve(ctx context.Context, req *Request) (*Result, error) {
	maxID, err := b.messages.MaxMessageID(ctx)
	if err != nil {
		return nil, err
	}
	if maxID == 0 {
		return &Result{}, nil
	}

	pred := newMessagePredicate(req.Groups, req.Policy)
	scan := &bruteScan{
		backend: b,
		req:     req,
		pred:    pred,
		now:     time.Now(),
	}
	if req.Policy.ScanRowCap > 0 {
		scan.rowBudget.Store(int64(req.Policy.ScanRowCap))
	} else {
		scan.rowBudget.Store(int64(1) << 62)
	}

	recentLo := core.ID(1)
	if d := req.Policy.RecentWindowDivisor; d > 1 {
		recentLo = maxID - maxID/core.ID(d) + 1
	}

	matches, err := scan.run(ctx, recentLo, maxID)
	if err != nil {
		return nil, err
	}
	candidates, capped := aggregateMatches(matches, req.Limit)

	// Widen to the full range when the recent window did not fill the
	// topic limit.
	if recentLo > 1 && !capped && !scan.rowsExhausted() && (req.Limit <= 0 || len(candidates) < req.Limit) {
		older, err := scan.run(ctx, 1, recentLo-1)
		if err != nil {
			return nil, err
		}
		if len(older) > 0 {
			matches = append(matches, older...)
			sortMatches(matches)
			candidates, capped = aggregateMatches(matches, req.Limit)
		}
	}

	truncated := capped || scan.rowsExhausted()
	if truncated {
		b.logger.Debug("brute-force scan truncated",
			"rows_scanned", scan.rowsScanned.Load(),
			"candidates", len(candidates))
	}
	return &Result{Candidates: candidates, Truncated: truncated}, nil
}

// bruteScan holds the shared state of one retrieval, across both passes.
type bruteScan struct {
	backend     *BruteForce
	req         *Request
	pred        messagePredicate
	now         time.Time
	rowBudget   atomic.Int64
	rowsScanned atomic.Int64
}

func (s *bruteScan) rowsExhausted() bool {
	return s.rowBudget.Load() <= 0
}

// run scans [lo, hi] across the shard pool and returns the merged matches
// in ascending message order.
func (s *bruteScan) run(ctx context.Context, lo, hi core.ID) ([]msgMatch, error) {
	if lo > hi {
		return nil, nil
	}
	shards := s.backend.shards
	span := hi - lo + 1
	if core.ID(shards) > span {
		shards = int(span)
	}
	step := span / core.ID(shards)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		matches  []msgMatch
		firstErr error
	)
	for i := 0; i < shards; i++ {
		shardLo := lo + core.ID(i)*step
		shardHi := shardLo + step - 1
		if i == shards-1 {
			shardHi = hi
		}
		wg.Add(1)
		err := s.backend.pool.Submit(func() {
			defer wg.Done()
			local, err := s.scanShard(ctx, shardLo, shardHi)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
				return
			}
			matches = append(matches, local...)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		if errors.Is(firstErr, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, firstErr
	}
	sortMatches(matches)
	return matches, nil
}

func (s *bruteScan) scanShard(ctx context.Context, lo, hi core.ID) ([]msgMatch, error) {
	var local []msgMatch
	err := s.backend.messages.ScanMessages(ctx, lo, hi, func(msg *core.Message) (bool, error) {
		if s.rowBudget.Add(-1) < 0 {
			return false, nil
		}
		s.rowsScanned.Add(1)
		if !s.req.Scope.Contains(msg.BoardId) || !messageInScope(msg, &s.req.Scope, s.now) {
			return true, nil
		}
		count, subj, ok := s.pred.match(msg, s.req.SubjectOnly)
		if !ok {
			return true, nil
		}
		local = append(local, msgMatch{
			boardID:    msg.BoardId,
			topicID:    msg.TopicId,
			msgID:      msg.Id,
			matchCount: count,
			subjectHit: subj,
		})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return local, nil
}
