package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/query"
)

func fingerprintBase() ([]query.OrGroup, ResolvedScope, core.SortSpec) {
	groups := []query.OrGroup{{
		Include: []query.Term{{Text: "lantern"}, {Text: "old oak", Phrase: true}},
		Exclude: []query.Term{{Text: "spam"}},
	}}
	scope := ResolvedScope{
		BoardIds: []core.ID{1, 2},
		Author:   "alice",
	}
	return groups, scope, core.DefaultSort()
}

func TestFingerprintDeterministic(t *testing.T) {
	groups, scope, sortSpec := fingerprintBase()
	first := Fingerprint(groups, &scope, sortSpec, false)
	second := Fingerprint(groups, &scope, sortSpec, false)
	assert.Equal(t, first, second)
	assert.Len(t, first, 32) // 16 bytes, hex encoded

	// Board order is canonicalized away.
	reordered := scope
	reordered.BoardIds = []core.ID{2, 1}
	assert.Equal(t, first, Fingerprint(groups, &reordered, sortSpec, false))
}

func TestFingerprintSensitivity(t *testing.T) {
	groups, scope, sortSpec := fingerprintBase()
	base := Fingerprint(groups, &scope, sortSpec, false)

	t.Run("term text", func(t *testing.T) {
		changed, _, _ := fingerprintBase()
		changed[0].Include[0].Text = "beacon"
		assert.NotEqual(t, base, Fingerprint(changed, &scope, sortSpec, false))
	})

	t.Run("word vs phrase", func(t *testing.T) {
		changed, _, _ := fingerprintBase()
		changed[0].Include[1].Phrase = false
		assert.NotEqual(t, base, Fingerprint(changed, &scope, sortSpec, false))
	})

	t.Run("include vs exclude", func(t *testing.T) {
		changed, _, _ := fingerprintBase()
		changed[0].Exclude = nil
		changed[0].Include = append(changed[0].Include, query.Term{Text: "spam"})
		assert.NotEqual(t, base, Fingerprint(changed, &scope, sortSpec, false))
	})

	t.Run("board scope", func(t *testing.T) {
		changed := scope
		changed.BoardIds = []core.ID{1}
		assert.NotEqual(t, base, Fingerprint(groups, &changed, sortSpec, false))
	})

	t.Run("topic scope", func(t *testing.T) {
		changed := scope
		changed.TopicId = 7
		assert.NotEqual(t, base, Fingerprint(groups, &changed, sortSpec, false))
	})

	t.Run("author scope", func(t *testing.T) {
		changed := scope
		changed.Author = "bob"
		assert.NotEqual(t, base, Fingerprint(groups, &changed, sortSpec, false))
	})

	t.Run("age bounds", func(t *testing.T) {
		changed := scope
		changed.MaxAge = 24 * time.Hour
		assert.NotEqual(t, base, Fingerprint(groups, &changed, sortSpec, false))
	})

	t.Run("sort order", func(t *testing.T) {
		changed := core.SortSpec{Field: core.SortByMessageID, Descending: true}
		assert.NotEqual(t, base, Fingerprint(groups, &scope, changed, false))
		flipped := sortSpec
		flipped.Descending = !flipped.Descending
		assert.NotEqual(t, base, Fingerprint(groups, &scope, flipped, false))
	})

	t.Run("subject restriction", func(t *testing.T) {
		assert.NotEqual(t, base, Fingerprint(groups, &scope, sortSpec, true))
	})
}
