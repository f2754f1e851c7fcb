package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

func TestBoardRepositoryBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	boards, err := repos.Boards.AddBoards(ctx,
		&core.Board{Name: "General"},
		&core.Board{Name: "Recycle Bin", RecycleBin: true},
	)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.NotZero(t, boards[0].Id)
	assert.NotEqual(t, boards[0].Id, boards[1].Id)

	got, err := repos.Boards.GetBoard(ctx, boards[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "General", got.Name)

	all, err := repos.Boards.AllBoards(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repos.Boards.GetBoard(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repos.Boards.DeleteBoards(ctx, boards[0].Id))
	_, err = repos.Boards.GetBoard(ctx, boards[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTopicRepositoryByBoard(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	boards, err := repos.Boards.AddBoards(ctx, &core.Board{Name: "A"}, &core.Board{Name: "B"})
	require.NoError(t, err)

	topics, err := repos.Topics.AddTopics(ctx,
		&core.Topic{BoardId: boards[0].Id},
		&core.Topic{BoardId: boards[0].Id},
		&core.Topic{BoardId: boards[1].Id},
	)
	require.NoError(t, err)
	require.Len(t, topics, 3)

	onA, err := repos.Topics.GetTopicsByBoard(ctx, boards[0].Id)
	require.NoError(t, err)
	assert.Len(t, onA, 2)

	// Moving a topic to another board updates the board index.
	topics[0].BoardId = boards[1].Id
	_, err = repos.Topics.UpdateTopics(ctx, topics[0])
	require.NoError(t, err)

	onA, err = repos.Topics.GetTopicsByBoard(ctx, boards[0].Id)
	require.NoError(t, err)
	assert.Len(t, onA, 1)

	onB, err := repos.Topics.GetTopicsByBoard(ctx, boards[1].Id)
	require.NoError(t, err)
	assert.Len(t, onB, 2)
}

func TestMessageRepositoryScan(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	now := time.Now()

	var msgs []*core.Message
	for i := 0; i < 5; i++ {
		msgs = append(msgs, &core.Message{
			TopicId: 1, BoardId: 1, Body: "body", PostedAt: now,
		})
	}
	msgs, err = repos.Messages.AddMessages(ctx, msgs...)
	require.NoError(t, err)

	maxID, err := repos.Messages.MaxMessageID(ctx)
	require.NoError(t, err)
	assert.Equal(t, msgs[4].Id, maxID)

	count, err := repos.Messages.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// Scans visit ascending IDs within [lo, hi].
	var visited []core.ID
	err = repos.Messages.ScanMessages(ctx, msgs[1].Id, msgs[3].Id, func(m *core.Message) (bool, error) {
		visited = append(visited, m.Id)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []core.ID{msgs[1].Id, msgs[2].Id, msgs[3].Id}, visited)

	// Early stop.
	visited = nil
	err = repos.Messages.ScanMessages(ctx, 1, maxID, func(m *core.Message) (bool, error) {
		visited = append(visited, m.Id)
		return len(visited) < 2, nil
	})
	require.NoError(t, err)
	assert.Len(t, visited, 2)

	ok, err := repos.Messages.HasMessage(ctx, msgs[0].Id)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repos.Messages.DeleteMessages(ctx, msgs[0].Id))
	ok, err = repos.Messages.HasMessage(ctx, msgs[0].Id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageScanHonorsContext(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	_, err = repos.Messages.AddMessages(ctx,
		&core.Message{TopicId: 1, BoardId: 1, Body: "a", PostedAt: time.Now()},
		&core.Message{TopicId: 1, BoardId: 1, Body: "b", PostedAt: time.Now()},
	)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = repos.Messages.ScanMessages(cancelled, 1, 100, func(m *core.Message) (bool, error) {
		t.Fatal("visit must not run after cancellation")
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostingsIndex(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	assert.True(t, repos.Postings.Available())

	require.NoError(t, repos.Postings.AddPostings(ctx, "lantern", 3, 1, 2))
	require.NoError(t, repos.Postings.AddPostings(ctx, "forest", 2))

	// Postings come back ascending regardless of insertion order.
	ids, err := repos.Postings.GetPostings(ctx, "lantern", 0)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2, 3}, ids)

	ids, err = repos.Postings.GetPostings(ctx, "lantern", 2)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2}, ids)

	n, err := repos.Postings.PostingCount(ctx, "lantern")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Unknown terms yield empty, not an error.
	ids, err = repos.Postings.GetPostings(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repos.Postings.RemovePostings(ctx, "lantern", 2))
	n, err = repos.Postings.PostingCount(ctx, "lantern")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repos.Postings.DropAll(ctx))
	n, err = repos.Postings.PostingCount(ctx, "forest")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCheckpointRepository(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo := NewCheckpointRepository(backend)
	ctx := context.Background()

	_, err = repo.GetCheckpoint(ctx, "postings")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.SetCheckpoint(ctx, &core.Checkpoint{
		Kind:      "postings",
		LastMsgId: 17,
		UpdatedAt: time.Now(),
	}))

	cp, err := repo.GetCheckpoint(ctx, "postings")
	require.NoError(t, err)
	assert.Equal(t, core.ID(17), cp.LastMsgId)
}
