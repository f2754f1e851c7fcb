package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boardsearch/core"
)

func newTestRanker(t *testing.T) *Ranker {
	t.Helper()
	r, err := NewRanker(core.DefaultWeights(), core.DefaultPolicy(), nil)
	require.NoError(t, err)
	return r
}

func TestNewRankerRejectsBadWeights(t *testing.T) {
	_, err := NewRanker(core.RelevanceWeights{}, core.DefaultPolicy(), nil)
	assert.ErrorIs(t, err, core.ErrZeroWeightSum)

	_, err = NewRanker(core.RelevanceWeights{Frequency: -1, Age: 10}, core.DefaultPolicy(), nil)
	assert.ErrorIs(t, err, core.ErrNegativeWeight)
}

func TestRankOrdering(t *testing.T) {
	r := newTestRanker(t)

	topics := map[core.ID]*core.Topic{
		1: {Id: 1, BoardId: 1, FirstMsgId: 10, LastMsgId: 90, ReplyCount: 5, Sticky: true},
		2: {Id: 2, BoardId: 1, FirstMsgId: 20, LastMsgId: 50, ReplyCount: 5},
		3: {Id: 3, BoardId: 1, FirstMsgId: 30, LastMsgId: 31, ReplyCount: 0},
	}
	candidates := []Candidate{
		{BoardId: 1, TopicId: 3, MsgId: 30, MatchCount: 1},
		{BoardId: 1, TopicId: 1, MsgId: 10, MatchCount: 8, SubjectHit: true},
		{BoardId: 1, TopicId: 2, MsgId: 21, MatchCount: 1},
	}

	entries, err := r.Rank(candidates, topics, 100, core.DefaultSort(), false)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// The sticky, subject-hit, high-frequency topic must come out on top.
	assert.Equal(t, core.ID(1), entries[0].TopicId)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Relevance, entries[i].Relevance)
	}
}

func TestRankTieBreaksOnMessageID(t *testing.T) {
	r := newTestRanker(t)

	// Two identical topics: identical factors, identical score.
	topics := map[core.ID]*core.Topic{
		1: {Id: 1, BoardId: 1, FirstMsgId: 10, LastMsgId: 10, ReplyCount: 0},
		2: {Id: 2, BoardId: 1, FirstMsgId: 20, LastMsgId: 20, ReplyCount: 0},
	}
	candidates := []Candidate{
		{BoardId: 1, TopicId: 1, MsgId: 10, MatchCount: 1},
		{BoardId: 1, TopicId: 2, MsgId: 20, MatchCount: 1},
	}

	entries, err := r.Rank(candidates, topics, 1000, core.DefaultSort(), false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Relevance, entries[1].Relevance)
	assert.Greater(t, entries[0].MsgId, entries[1].MsgId)
}

func TestRankSortByMessageID(t *testing.T) {
	r := newTestRanker(t)

	topics := map[core.ID]*core.Topic{
		1: {Id: 1, BoardId: 1, FirstMsgId: 10, LastMsgId: 10},
		2: {Id: 2, BoardId: 1, FirstMsgId: 20, LastMsgId: 20},
	}
	candidates := []Candidate{
		{BoardId: 1, TopicId: 1, MsgId: 10, MatchCount: 5},
		{BoardId: 1, TopicId: 2, MsgId: 20, MatchCount: 1},
	}

	entries, err := r.Rank(candidates, topics, 100, core.SortSpec{Field: core.SortByMessageID, Descending: true}, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, core.ID(20), entries[0].MsgId)
}

func TestRankDropsMissingTopics(t *testing.T) {
	r := newTestRanker(t)

	entries, err := r.Rank([]Candidate{
		{BoardId: 1, TopicId: 99, MsgId: 5, MatchCount: 1},
	}, map[core.ID]*core.Topic{}, 100, core.DefaultSort(), false)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRankScoresWithinScale(t *testing.T) {
	r := newTestRanker(t)

	topics := map[core.ID]*core.Topic{
		1: {Id: 1, BoardId: 1, FirstMsgId: 1, LastMsgId: 100, ReplyCount: 1000, Sticky: true},
	}
	candidates := []Candidate{
		{BoardId: 1, TopicId: 1, MsgId: 1, MatchCount: 5000, SubjectHit: true},
	}
	entries, err := r.Rank(candidates, topics, 100, core.DefaultSort(), false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.LessOrEqual(t, entries[0].Relevance, 1000.0)
	assert.Greater(t, entries[0].Relevance, 0.0)
}

func TestScoreRowRecency(t *testing.T) {
	r := newTestRanker(t)
	now := time.Now()
	topic := &core.Topic{Id: 1, BoardId: 1, FirstMsgId: 5, LastMsgId: 5}

	fresh := &core.Message{Id: 5, TopicId: 1, BoardId: 1, PostedAt: now.Add(-time.Hour)}
	stale := &core.Message{Id: 5, TopicId: 1, BoardId: 1, PostedAt: now.Add(-60 * 24 * time.Hour)}

	freshScore := r.ScoreRow(fresh, topic, 1, false, now)
	staleScore := r.ScoreRow(stale, topic, 1, false, now)
	assert.Greater(t, freshScore, staleScore)
}

func TestRecentWindowPosition(t *testing.T) {
	// Divisor 3 over maxID 90: window starts at 60.
	assert.Equal(t, 1.0, recentWindowPosition(90, 90, 3))
	assert.Equal(t, 0.0, recentWindowPosition(60, 90, 3))
	assert.Equal(t, 0.0, recentWindowPosition(10, 90, 3))
	assert.InDelta(t, 0.5, recentWindowPosition(75, 90, 3), 0.001)
	assert.Equal(t, 1.0, recentWindowPosition(0, 0, 3))
}
