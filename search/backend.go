package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/query"
	"github.com/poiesic/boardsearch/storage"
)

// Request carries everything a retrieval backend needs for one search.
type Request struct {
	Groups      []query.OrGroup
	Scope       ResolvedScope
	Policy      core.SearchPolicy
	SubjectOnly bool

	// Limit caps the number of topics retrieved. <= 0 means no cap.
	Limit int
}

// Candidate is one matching topic with its anchor message, before ranking.
type Candidate struct {
	BoardId    core.ID
	TopicId    core.ID
	MsgId      core.ID // first matching message in the topic
	MatchCount int     // term occurrences summed over matching messages
	SubjectHit bool
}

// Result is the output of a retrieval backend.
type Result struct {
	Candidates []Candidate

	// Truncated reports that the scan row cap or the topic limit stopped
	// retrieval before the full range was examined.
	Truncated bool
}

// Backend retrieves candidate topics for a classified query.
type Backend interface {
	// Name identifies the retrieval strategy for logging and monitoring.
	Name() string

	// Retrieve finds matching topics within the request scope. Candidates
	// are returned in ascending anchor-message order.
	Retrieve(ctx context.Context, req *Request) (*Result, error)
}

// SelectBackend picks indexed retrieval when the store has a usable term
// index, otherwise brute-force scanning.
func SelectBackend(indexed *Indexed, brute *BruteForce, postings storage.PostingsIndex) Backend {
	if postings != nil && postings.Available() {
		return indexed
	}
	return brute
}

// msgMatch is a single matching message before topic aggregation.
type msgMatch struct {
	boardID    core.ID
	topicID    core.ID
	msgID      core.ID
	matchCount int
	subjectHit bool
}

// aggregateMatches folds message matches, which must be in ascending message
// order, into per-topic candidates. The anchor is the lowest matching message
// of each topic. A limit <= 0 means no cap; hitting the cap reports true.
func aggregateMatches(matches []msgMatch, limit int) ([]Candidate, bool) {
	byTopic := make(map[core.ID]int, len(matches))
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		if i, ok := byTopic[m.topicID]; ok {
			candidates[i].MatchCount += m.matchCount
			candidates[i].SubjectHit = candidates[i].SubjectHit || m.subjectHit
			continue
		}
		if limit > 0 && len(candidates) >= limit {
			return candidates, true
		}
		byTopic[m.topicID] = len(candidates)
		candidates = append(candidates, Candidate{
			BoardId:    m.boardID,
			TopicId:    m.topicID,
			MsgId:      m.msgID,
			MatchCount: m.matchCount,
			SubjectHit: m.subjectHit,
		})
	}
	return candidates, false
}

func sortMatches(matches []msgMatch) {
	sort.Slice(matches, func(i, j int) bool { return matches[i].msgID < matches[j].msgID })
}

// messageInScope applies the non-board scope filters. Board membership is
// checked separately so backends can skip it when the scan is pre-filtered.
func messageInScope(msg *core.Message, scope *ResolvedScope, now time.Time) bool {
	if scope.TopicId != 0 && msg.TopicId != scope.TopicId {
		return false
	}
	if scope.Author != "" && !strings.EqualFold(msg.AuthorName, scope.Author) {
		return false
	}
	if scope.MinAge > 0 && now.Sub(msg.PostedAt) < scope.MinAge {
		return false
	}
	if scope.MaxAge > 0 && now.Sub(msg.PostedAt) > scope.MaxAge {
		return false
	}
	return true
}
