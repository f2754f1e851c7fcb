package search

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/query"
)

// Fingerprint derives the identity of a materialized result set from
// everything that determines its content: the classified groups, the
// resolved scope, the sort order and the field restriction. Pagination is
// deliberately absent, so every page of one search shares a snapshot.
//
// The encoding is canonical: board IDs are sorted and group internals keep
// classification order, which Classify already makes deterministic.
func Fingerprint(groups []query.OrGroup, scope *ResolvedScope, sortSpec core.SortSpec, subjectOnly bool) string {
	var b strings.Builder

	for _, g := range groups {
		b.WriteString("g|")
		for _, t := range g.Include {
			writeTerm(&b, "+", t)
		}
		for _, t := range g.Exclude {
			writeTerm(&b, "-", t)
		}
	}

	boards := make([]core.ID, len(scope.BoardIds))
	copy(boards, scope.BoardIds)
	sort.Slice(boards, func(i, j int) bool { return boards[i] < boards[j] })
	b.WriteString("s|")
	for _, id := range boards {
		fmt.Fprintf(&b, "%d,", id)
	}
	fmt.Fprintf(&b, "t%d|a%s|n%d|x%d|", scope.TopicId, strings.ToLower(scope.Author), scope.MinAge, scope.MaxAge)

	fmt.Fprintf(&b, "o%d.%t|f%t", sortSpec.Field, sortSpec.Descending, subjectOnly)

	h, _ := blake2b.New(16, nil)
	h.Write([]byte(b.String()))
	return hex.EncodeToString(h.Sum(nil))
}

func writeTerm(b *strings.Builder, sign string, t query.Term) {
	b.WriteString(sign)
	if t.Phrase {
		b.WriteString("p:")
	} else {
		b.WriteString("w:")
	}
	b.WriteString(t.Text)
	b.WriteByte(';')
}
