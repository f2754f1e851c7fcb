package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/boardsearch/core"
)

func TestMessageRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	msg := &core.Message{
		Id:         42,
		TopicId:    7,
		BoardId:    3,
		AuthorId:   99,
		AuthorName: "alice",
		Subject:    "Lantern designs",
		Body:       "A gentle wind lifted the lantern.",
		PostedAt:   now,
		InsertedAt: now,
		UpdatedAt:  now,
	}

	got, err := UnmarshalMessage(MarshalMessage(msg))
	require.NoError(t, err)
	assert.Equal(t, msg.Id, got.Id)
	assert.Equal(t, msg.AuthorName, got.AuthorName)
	assert.Equal(t, msg.Subject, got.Subject)
	assert.Equal(t, msg.Body, got.Body)
	assert.True(t, msg.PostedAt.Equal(got.PostedAt))
}

func TestResultSetRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	set := &core.ResultSet{
		Fingerprint: "abc123",
		Entries: []core.ResultEntry{
			{BoardId: 1, TopicId: 2, MsgId: 3, Relevance: 712.5, MatchCount: 4},
			{BoardId: 1, TopicId: 5, MsgId: 6, Relevance: 318.25, MatchCount: 1},
		},
		CreatedAt:  now,
		TotalCount: 2,
	}

	got, err := UnmarshalResultSet(MarshalResultSet(set))
	require.NoError(t, err)
	assert.Equal(t, set.Fingerprint, got.Fingerprint)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, set.Entries[0].Relevance, got.Entries[0].Relevance)
	assert.Equal(t, set.Entries[1].MsgId, got.Entries[1].MsgId)
	assert.Equal(t, set.TotalCount, got.TotalCount)
	assert.True(t, set.CreatedAt.Equal(got.CreatedAt))
}

func TestUnmarshalTruncated(t *testing.T) {
	data := MarshalMessage(&core.Message{
		TopicId: 1, BoardId: 1, Body: "body", PostedAt: time.Now(),
	})
	_, err := UnmarshalMessage(data[:3])
	assert.Error(t, err)
}
