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

package cache

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// Cache materializes ranked result sets at most once per (session,
// fingerprint) pair. Concurrent requests for the same pair share one
// computation through a single flight; later pages of the same search read
// the stored snapshot instead of re-running retrieval.
type Cache struct {
	store  SessionStore
	group  singleflight.Group
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		c.logger = logger
		return nil
	}
}

// New creates a Cache backed by the given session store.
func New(store SessionStore, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	c := &Cache{store: store}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

type flightResult struct {
	set *core.ResultSet
	hit bool
}

// GetOrCompute returns the cached result set for the key, computing and
// storing it on a miss. The boolean reports whether the set came from the
// store. A failed Put is logged and the computed set is still returned;
// losing a cache write must not fail the search.
func (c *Cache) GetOrCompute(ctx context.Context, sessionKey, fingerprint string, compute func(context.Context) (*core.ResultSet, error)) (*core.ResultSet, bool, error) {
	key := sessionKey + "\x00" + fingerprint
	v, err, _ := c.group.Do(key, func() (any, error) {
		data, err := c.store.Get(ctx, sessionKey, fingerprint)
		if err == nil {
			// A corrupt or misfiled entry is dropped and recomputed; it
			// must never poison the key for good.
			set, err := storage.UnmarshalResultSet(data)
			switch {
			case err != nil:
				c.logger.Warn("dropping undecodable cached result set", "error", err)
				_ = c.store.Delete(ctx, sessionKey, fingerprint)
			case set.Fingerprint != fingerprint:
				c.logger.Warn("dropping cached result set stored under the wrong key",
					"want", fingerprint, "got", set.Fingerprint)
				_ = c.store.Delete(ctx, sessionKey, fingerprint)
			default:
				return flightResult{set: set, hit: true}, nil
			}
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		set, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Put(ctx, sessionKey, fingerprint, storage.MarshalResultSet(set)); err != nil {
			c.logger.Warn("result set cache write failed", "error", err)
		}
		return flightResult{set: set}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(flightResult)
	return res.set, res.hit, nil
}

// Invalidate removes a cached result set, forcing the next request to
// recompute.
func (c *Cache) Invalidate(ctx context.Context, sessionKey, fingerprint string) error {
	return c.store.Delete(ctx, sessionKey, fingerprint)
}

// Paginate slices one page out of a result set. The window is clamped to
// the set bounds; a limit <= 0 means the whole remainder. Concatenating
// consecutive pages reproduces the full entry list.
func Paginate(set *core.ResultSet, page core.Pagination) []core.ResultEntry {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(set.Entries) {
		return nil
	}
	end := len(set.Entries)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return set.Entries[page.Offset:end]
}
