package search

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boardsearch/cache"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/indexing"
	"github.com/poiesic/boardsearch/query"
	"github.com/poiesic/boardsearch/storage"
	"github.com/poiesic/boardsearch/storage/badger"
	"github.com/poiesic/boardsearch/suggest"
	suggestmock "github.com/poiesic/boardsearch/suggest/mock"
)

type fixture struct {
	repos   *badger.MemoryRepositories
	store   *cache.MemorySessionStore
	engine  *Engine
	boardID core.ID
	binID   core.ID
	topics  []*core.Topic
}

// recordingMonitor counts cache lookups for hit/miss assertions.
type recordingMonitor struct {
	NoopMonitor
	mu     sync.Mutex
	hits   int
	misses int
}

func (m *recordingMonitor) CacheLookup(ctx context.Context, fingerprint string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

// newFixture seeds two boards (one recycle bin), three topics and a handful
// of messages, then builds an engine. withIndex additionally runs the
// indexing pipeline and wires the postings index.
func newFixture(t *testing.T, withIndex bool, opts ...EngineOption) *fixture {
	t.Helper()
	ctx := context.Background()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	boards, err := repos.Boards.AddBoards(ctx,
		&core.Board{Name: "General"},
		&core.Board{Name: "Recycle Bin", RecycleBin: true},
	)
	require.NoError(t, err)

	topics, err := repos.Topics.AddTopics(ctx,
		&core.Topic{BoardId: boards[0].Id},
		&core.Topic{BoardId: boards[0].Id, Sticky: true},
		&core.Topic{BoardId: boards[1].Id},
	)
	require.NoError(t, err)

	f := &fixture{
		repos:   repos,
		boardID: boards[0].Id,
		binID:   boards[1].Id,
		topics:  topics,
	}

	f.post(t, topics[0], "alice", "Lantern designs for camping", "He carried a lantern into the dark forest.")
	f.post(t, topics[0], "bob", "", "The old oak tree glowed under lantern light.")
	f.post(t, topics[1], "carol", "Mechanical keyboards", "Switch feel matters more than looks. No spam here.")
	f.post(t, topics[1], "dave", "", "My lantern broke, total spam advice inside.")
	f.post(t, topics[2], "erin", "Deleted lantern thread", "This lantern post lives in the recycle bin.")

	postings := storage.PostingsIndex(storage.UnindexedPostings{})
	if withIndex {
		checkpoints := badger.NewCheckpointRepository(repos.Backend)
		pipeline, err := indexing.NewPipeline(repos.Messages, repos.Postings, checkpoints)
		require.NoError(t, err)
		defer pipeline.Release()
		_, err = pipeline.Run(ctx)
		require.NoError(t, err)
		postings = repos.Postings
	}

	f.store = cache.NewMemorySessionStore()
	resultCache, err := cache.New(f.store)
	require.NoError(t, err)

	f.engine, err = NewEngine(repos.Boards, repos.Topics, repos.Messages, postings, resultCache, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { f.engine.Close() })
	return f
}

// post adds one message and maintains the topic aggregates the way the
// service layer does.
func (f *fixture) post(t *testing.T, topic *core.Topic, author, subject, body string) *core.Message {
	t.Helper()
	ctx := context.Background()

	msgs, err := f.repos.Messages.AddMessages(ctx, &core.Message{
		TopicId:    topic.Id,
		BoardId:    topic.BoardId,
		AuthorName: author,
		Subject:    subject,
		Body:       body,
		PostedAt:   time.Now(),
	})
	require.NoError(t, err)

	msg := msgs[0]
	if topic.FirstMsgId == 0 {
		topic.FirstMsgId = msg.Id
	} else {
		topic.ReplyCount++
	}
	if msg.Id > topic.LastMsgId {
		topic.LastMsgId = msg.Id
	}
	_, err = f.repos.Topics.UpdateTopics(ctx, topic)
	require.NoError(t, err)
	return msg
}

func (f *fixture) search(t *testing.T, raw core.RawQuery) *Response {
	t.Helper()
	resp, err := f.engine.Search(context.Background(), "session-1", raw, AllVisible{Boards: f.repos.Boards})
	require.NoError(t, err)
	return resp
}

func TestSearchPhraseMatch(t *testing.T) {
	f := newFixture(t, false)

	resp := f.search(t, core.RawQuery{Text: `"old oak tree"`})
	require.False(t, resp.Failed())
	require.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Page, 1)
	assert.Equal(t, f.topics[0].Id, resp.Page[0].Topic.Id)
	assert.Contains(t, resp.Page[0].PreviewHTML, "<mark>old oak tree</mark>")

	// Word order matters for phrases.
	resp = f.search(t, core.RawQuery{Text: `"oak old tree"`})
	assert.Equal(t, 0, resp.TotalCount)
}

func TestSearchExclusion(t *testing.T) {
	f := newFixture(t, false)

	// "lantern" alone matches both visible topics.
	resp := f.search(t, core.RawQuery{Text: "lantern"})
	require.Equal(t, 2, resp.TotalCount)

	// Excluding spam drops the topic whose matching content mentions it.
	resp = f.search(t, core.RawQuery{Text: "lantern -spam"})
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, f.topics[0].Id, resp.Page[0].Topic.Id)
}

func TestSearchRecycleBinExcluded(t *testing.T) {
	f := newFixture(t, false)

	// Default scope skips the recycle bin even though its topic matches.
	resp := f.search(t, core.RawQuery{Text: "lantern"})
	for _, row := range resp.Page {
		assert.NotEqual(t, f.binID, row.Board.Id)
	}

	// Explicitly scoping to the bin finds it.
	resp = f.search(t, core.RawQuery{
		Text:  "lantern",
		Scope: core.ScopeSpec{BoardIds: []core.ID{f.binID}},
	})
	assert.Equal(t, 1, resp.TotalCount)
}

func TestSearchAllTermsRejectedSkipsCache(t *testing.T) {
	f := newFixture(t, false)

	resp := f.search(t, core.RawQuery{Text: "the a an"})
	require.True(t, resp.Failed())
	assert.Empty(t, resp.Fingerprint)
	require.NotEmpty(t, resp.Problems)

	// Nothing was materialized for the session.
	_, err := f.store.Get(context.Background(), "session-1", resp.Fingerprint)
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestSearchProblemsAccumulate(t *testing.T) {
	f := newFixture(t, false)

	// Unusable terms and a missing topic scope are both reported at once.
	resp := f.search(t, core.RawQuery{
		Text:  "the",
		Scope: core.ScopeSpec{TopicId: 99999},
	})
	require.True(t, resp.Failed())
	assert.Len(t, resp.Problems, 2)
}

func TestSearchForceIndexRejectsUnindexable(t *testing.T) {
	policy := core.DefaultPolicy()
	policy.ForceIndex = true
	f := newFixture(t, true, WithPolicy(policy))

	// A phrase of sub-length words has no indexable token.
	resp := f.search(t, core.RawQuery{Text: `"a b"`})
	require.True(t, resp.Failed())
	require.Len(t, resp.Problems, 1)
	assert.ErrorIs(t, resp.Problems[0].Err, ErrQueryNotSpecific)
}

func TestSearchIndexedMatchesBrute(t *testing.T) {
	queries := []string{"lantern", "lantern -spam", `"old oak tree"`, "lantern forest"}

	brute := newFixture(t, false)
	indexed := newFixture(t, true)

	for _, q := range queries {
		bruteResp := brute.search(t, core.RawQuery{Text: q})
		indexedResp := indexed.search(t, core.RawQuery{Text: q})
		require.Equal(t, bruteResp.TotalCount, indexedResp.TotalCount, "query %q", q)
		require.Len(t, indexedResp.Page, len(bruteResp.Page), "query %q", q)
		for i := range bruteResp.Page {
			assert.Equal(t, bruteResp.Page[i].Topic.Id, indexedResp.Page[i].Topic.Id, "query %q", q)
		}
	}
}

func TestSearchSubjectOnly(t *testing.T) {
	f := newFixture(t, false)

	// "forest" appears only in a body; subject-only must not find it.
	resp := f.search(t, core.RawQuery{Text: "forest", SubjectOnly: true})
	assert.Equal(t, 0, resp.TotalCount)

	resp = f.search(t, core.RawQuery{Text: "keyboards", SubjectOnly: true})
	assert.Equal(t, 1, resp.TotalCount)
}

func TestSearchAnyType(t *testing.T) {
	f := newFixture(t, false)

	// ALL requires both, ANY either.
	resp := f.search(t, core.RawQuery{Text: "keyboards forest"})
	assert.Equal(t, 0, resp.TotalCount)

	resp = f.search(t, core.RawQuery{Text: "keyboards forest", SearchType: core.SearchTypeAny})
	assert.Equal(t, 2, resp.TotalCount)
}

func TestSearchAuthorScope(t *testing.T) {
	f := newFixture(t, false)

	resp := f.search(t, core.RawQuery{
		Text:  "lantern",
		Scope: core.ScopeSpec{Author: "ALICE"},
	})
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "alice", resp.Page[0].Message.AuthorName)
}

func TestSearchCachesPerSession(t *testing.T) {
	monitor := &recordingMonitor{}
	f := newFixture(t, false, WithMonitor(monitor))

	raw := core.RawQuery{Text: "lantern"}
	first := f.search(t, raw)
	second := f.search(t, raw)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.TotalCount, second.TotalCount)

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, 1, monitor.misses)
	assert.Equal(t, 1, monitor.hits)
}

func TestSearchPaginationConsistent(t *testing.T) {
	f := newFixture(t, false)

	full := f.search(t, core.RawQuery{Text: "lantern"})
	require.Equal(t, 2, full.TotalCount)

	page1 := f.search(t, core.RawQuery{Text: "lantern", Page: core.Pagination{Offset: 0, Limit: 1}})
	page2 := f.search(t, core.RawQuery{Text: "lantern", Page: core.Pagination{Offset: 1, Limit: 1}})
	require.Len(t, page1.Page, 1)
	require.Len(t, page2.Page, 1)
	assert.Equal(t, full.Page[0].Topic.Id, page1.Page[0].Topic.Id)
	assert.Equal(t, full.Page[1].Topic.Id, page2.Page[0].Topic.Id)
	assert.Equal(t, 2, page1.TotalCount)
}

func TestSearchStaleSnapshotRecomputed(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	first := f.search(t, core.RawQuery{Text: "keyboards"})
	require.Equal(t, 1, first.TotalCount)

	// Delete the matching topic's messages behind the snapshot's back.
	require.NoError(t, f.repos.Messages.DeleteMessages(ctx, first.Page[0].Message.Id))

	second := f.search(t, core.RawQuery{Text: "keyboards"})
	assert.Equal(t, 0, second.TotalCount)
}

func TestSearchSuggestionsOnZeroResults(t *testing.T) {
	provider := suggestmock.NewMockProvider("lantern")
	advisor, err := suggest.NewAdvisor(5, nil, provider)
	require.NoError(t, err)

	f := newFixture(t, false, WithSuggester(advisor))

	resp := f.search(t, core.RawQuery{Text: "lanterrn"})
	assert.Equal(t, 0, resp.TotalCount)
	assert.Equal(t, []string{"lantern"}, resp.DidYouMean)
	assert.Equal(t, 1, provider.CallCount())

	// Successful searches never consult the advisor.
	resp = f.search(t, core.RawQuery{Text: "lantern"})
	assert.NotZero(t, resp.TotalCount)
	assert.Equal(t, 1, provider.CallCount())
}

func TestSearchSuggestionsSkipPhrasesAndDigits(t *testing.T) {
	provider := suggestmock.NewMockProvider("lantern")
	advisor, err := suggest.NewAdvisor(5, nil, provider)
	require.NoError(t, err)

	f := newFixture(t, false, WithSuggester(advisor))

	// Phrases and terms carrying digits are not worth spell-correcting;
	// only the plain misspelled word reaches the provider.
	resp := f.search(t, core.RawQuery{Text: `"missing phrase" model42 lanterrn`})
	assert.Equal(t, 0, resp.TotalCount)
	assert.Equal(t, 1, provider.CallCount())
	assert.Equal(t, []string{"lanterrn"}, provider.LastTerms())
}

func TestSearchQueryTooLong(t *testing.T) {
	f := newFixture(t, false)

	long := strings.Repeat("word ", 40)
	resp := f.search(t, core.RawQuery{Text: long})
	require.True(t, resp.Failed())
	require.Len(t, resp.Problems, 1)
	assert.ErrorIs(t, resp.Problems[0].Err, query.ErrQueryTooLong)
}

func TestSearchQueryTooLongProblemsAggregate(t *testing.T) {
	f := newFixture(t, false)

	// Over-long and nothing but stop words: both faults are reported in
	// one response so the user can correct them together.
	resp := f.search(t, core.RawQuery{Text: strings.Repeat("the a an ", 20)})
	require.True(t, resp.Failed())
	require.Len(t, resp.Problems, 2)
	assert.ErrorIs(t, resp.Problems[0].Err, query.ErrQueryTooLong)
	assert.ErrorIs(t, resp.Problems[1].Err, query.ErrEmptyQuery)
}

func TestResolverTopicScope(t *testing.T) {
	f := newFixture(t, false)

	// Topic scope collapses to the owning board.
	resp := f.search(t, core.RawQuery{
		Text:  "lantern",
		Scope: core.ScopeSpec{TopicId: f.topics[1].Id},
	})
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, f.topics[1].Id, resp.Page[0].Topic.Id)
}
