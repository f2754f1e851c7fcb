package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

func testSet(fingerprint string, n int) *core.ResultSet {
	set := &core.ResultSet{
		Fingerprint: fingerprint,
		CreatedAt:   time.Now(),
		TotalCount:  n,
	}
	for i := 0; i < n; i++ {
		set.Entries = append(set.Entries, core.ResultEntry{
			BoardId:   1,
			TopicId:   core.ID(i + 1),
			MsgId:     core.ID(100 + i),
			Relevance: float64(1000 - i),
		})
	}
	return set
}

func TestGetOrComputeRoundTrip(t *testing.T) {
	c, err := New(NewMemorySessionStore())
	require.NoError(t, err)
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) (*core.ResultSet, error) {
		computes++
		return testSet("fp1", 3), nil
	}

	set, hit, err := c.GetOrCompute(ctx, "s1", "fp1", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, set.TotalCount)
	assert.Equal(t, 1, computes)

	set, hit, err = c.GetOrCompute(ctx, "s1", "fp1", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, set.TotalCount)
	assert.Equal(t, 1, computes)

	// Another session computes independently.
	_, hit, err = c.GetOrCompute(ctx, "s2", "fp1", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, computes)
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c, err := New(NewMemorySessionStore())
	require.NoError(t, err)
	ctx := context.Background()

	var computes atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (*core.ResultSet, error) {
		computes.Add(1)
		<-release
		return testSet("fp1", 1), nil
	}

	const callers = 16
	var wg sync.WaitGroup
	started := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			set, _, err := c.GetOrCompute(ctx, "s1", "fp1", compute)
			assert.NoError(t, err)
			assert.Equal(t, 1, set.TotalCount)
		}()
	}
	for i := 0; i < callers; i++ {
		<-started
	}
	// Give the callers a moment to pile onto the flight, then release.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load(), "concurrent identical requests must compute once")
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c, err := New(NewMemorySessionStore())
	require.NoError(t, err)
	ctx := context.Background()

	boom := errors.New("backend down")
	_, _, err = c.GetOrCompute(ctx, "s1", "fp1", func(ctx context.Context) (*core.ResultSet, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// The failure left nothing behind; the next call computes again.
	set, hit, err := c.GetOrCompute(ctx, "s1", "fp1", func(ctx context.Context) (*core.ResultSet, error) {
		return testSet("fp1", 1), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, set.TotalCount)
}

func TestGetOrComputeDropsMisfiledEntry(t *testing.T) {
	store := NewMemorySessionStore()
	c, err := New(store)
	require.NoError(t, err)
	ctx := context.Background()

	// A snapshot carrying another query's fingerprint ends up under this
	// key. It must be discarded and recomputed, not served or kept around.
	require.NoError(t, store.Put(ctx, "s1", "fp1", storage.MarshalResultSet(testSet("other", 5))))

	computes := 0
	compute := func(ctx context.Context) (*core.ResultSet, error) {
		computes++
		return testSet("fp1", 2), nil
	}

	set, hit, err := c.GetOrCompute(ctx, "s1", "fp1", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fp1", set.Fingerprint)
	assert.Equal(t, 1, computes)

	// The bad entry is gone; the recomputed one now serves hits.
	_, hit, err = c.GetOrCompute(ctx, "s1", "fp1", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, computes)
}

func TestInvalidate(t *testing.T) {
	c, err := New(NewMemorySessionStore())
	require.NoError(t, err)
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) (*core.ResultSet, error) {
		computes++
		return testSet("fp1", 1), nil
	}
	_, _, err = c.GetOrCompute(ctx, "s1", "fp1", compute)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "s1", "fp1"))

	_, hit, err := c.GetOrCompute(ctx, "s1", "fp1", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, computes)
}

func TestPaginate(t *testing.T) {
	set := testSet("fp", 10)

	t.Run("pages concatenate to the full set", func(t *testing.T) {
		var all []core.ResultEntry
		for offset := 0; offset < 10; offset += 3 {
			all = append(all, Paginate(set, core.Pagination{Offset: offset, Limit: 3})...)
		}
		assert.Equal(t, set.Entries, all)
	})

	t.Run("window clamped to bounds", func(t *testing.T) {
		assert.Len(t, Paginate(set, core.Pagination{Offset: 8, Limit: 5}), 2)
		assert.Empty(t, Paginate(set, core.Pagination{Offset: 10, Limit: 5}))
		assert.Empty(t, Paginate(set, core.Pagination{Offset: 50, Limit: 5}))
	})

	t.Run("no limit returns the remainder", func(t *testing.T) {
		assert.Len(t, Paginate(set, core.Pagination{Offset: 4}), 6)
	})

	t.Run("negative offset treated as zero", func(t *testing.T) {
		assert.Len(t, Paginate(set, core.Pagination{Offset: -3, Limit: 2}), 2)
	})
}

func TestMemoryStoreSingleLiveSetByDefault(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "a", []byte("1")))
	time.Sleep(time.Millisecond)
	require.NoError(t, store.Put(ctx, "s1", "b", []byte("2")))

	// A new fingerprint replaces the session's previous result set.
	_, err := store.Get(ctx, "s1", "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "s1", "b")
	assert.NoError(t, err)

	// Other sessions are untouched.
	require.NoError(t, store.Put(ctx, "s2", "a", []byte("3")))
	_, err = store.Get(ctx, "s2", "a")
	assert.NoError(t, err)
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemorySessionStore(WithMaxPerSession(2))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "a", []byte("1")))
	time.Sleep(time.Millisecond)
	require.NoError(t, store.Put(ctx, "s1", "b", []byte("2")))
	time.Sleep(time.Millisecond)
	require.NoError(t, store.Put(ctx, "s1", "c", []byte("3")))

	// The oldest entry was evicted to stay within the cap.
	_, err := store.Get(ctx, "s1", "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "s1", "c")
	assert.NoError(t, err)
}

func TestMemoryStoreTTL(t *testing.T) {
	store := NewMemorySessionStore(WithTTL(10 * time.Millisecond))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", "a", []byte("1")))
	_, err := store.Get(ctx, "s1", "a")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, err = store.Get(ctx, "s1", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
