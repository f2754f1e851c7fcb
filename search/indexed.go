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
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/query"
	"github.com/poiesic/boardsearch/storage"
)

// hydrateBatch is how many candidate messages are fetched per round trip
// during index verification.
const hydrateBatch = 512

// Indexed retrieves candidates through the postings index. Posting lists
// narrow the candidate set; every surviving message is then verified against
// the full query predicate, so phrase adjacency and exclusions behave exactly
// as they do under a scan.
type Indexed struct {
	postings storage.PostingsIndex
	messages storage.MessageRepository
	fallback *BruteForce
	logger   *slog.Logger
}

// NewIndexed creates an indexed backend. The fallback handles queries the
// index cannot narrow (no indexable term) unless the policy forbids it.
func NewIndexed(postings storage.PostingsIndex, messages storage.MessageRepository, fallback *BruteForce, logger *slog.Logger) (*Indexed, error) {
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if postings == nil {
		return nil, storage.ErrIndexUnavailable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexed{postings: postings, messages: messages, fallback: fallback, logger: logger}, nil
}

func (ix *Indexed) Name() string { return "indexed" }

func (ix *Indexed) Retrieve(ctx context.Context, req *Request) (*Result, error) {
	groupTokens := make([][]string, len(req.Groups))
	for i, g := range req.Groups {
		groupTokens[i] = indexTokens(g, req.Policy)
		if len(groupTokens[i]) == 0 {
			if req.Policy.ForceIndex {
				return nil, fmt.Errorf("%w: no indexable term", ErrQueryNotSpecific)
			}
			if ix.fallback == nil {
				return nil, fmt.Errorf("%w: no indexable term", ErrQueryNotSpecific)
			}
			ix.logger.Debug("query not indexable, falling back to scan")
			return ix.fallback.Retrieve(ctx, req)
		}
	}

	seen := make(map[core.ID]bool)
	var ids []core.ID
	for i := range req.Groups {
		groupIDs, err := ix.narrowGroup(ctx, groupTokens[i], req.Policy)
		if err != nil {
			return nil, err
		}
		for _, id := range groupIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ix.verify(ctx, req, ids)
}

// narrowGroup intersects the posting lists of a group's tokens, most
// selective first. Lookups are capped at the indexed-term limit; the
// remaining tokens are left to predicate verification.
func (ix *Indexed) narrowGroup(ctx context.Context, tokens []string, policy core.SearchPolicy) ([]core.ID, error) {
	type tokenCount struct {
		token string
		count int
	}
	counts := make([]tokenCount, 0, len(tokens))
	for _, t := range tokens {
		n, err := ix.postings.PostingCount(ctx, t)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		counts = append(counts, tokenCount{token: t, count: n})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count < counts[j].count })
	if max := policy.MaxIndexedTerms; max > 0 && len(counts) > max {
		counts = counts[:max]
	}

	acc, err := ix.postings.GetPostings(ctx, counts[0].token, 0)
	if err != nil {
		return nil, err
	}
	for _, tc := range counts[1:] {
		if len(acc) == 0 {
			return nil, nil
		}
		next, err := ix.postings.GetPostings(ctx, tc.token, 0)
		if err != nil {
			return nil, err
		}
		acc = intersectSorted(acc, next)
	}
	return acc, nil
}

// verify hydrates candidate messages in batches and applies the scope filter
// and the full query predicate.
func (ix *Indexed) verify(ctx context.Context, req *Request, ids []core.ID) (*Result, error) {
	pred := newMessagePredicate(req.Groups, req.Policy)
	now := time.Now()
	var matches []msgMatch
	for start := 0; start < len(ids); start += hydrateBatch {
		end := start + hydrateBatch
		if end > len(ids) {
			end = len(ids)
		}
		msgs, err := ix.messages.GetMessages(ctx, ids[start:end]...)
		if err != nil {
			return nil, err
		}
		for _, msg := range msgs {
			if !req.Scope.Contains(msg.BoardId) || !messageInScope(msg, &req.Scope, now) {
				continue
			}
			count, subj, ok := pred.match(msg, req.SubjectOnly)
			if !ok {
				continue
			}
			matches = append(matches, msgMatch{
				boardID:    msg.BoardId,
				topicID:    msg.TopicId,
				msgID:      msg.Id,
				matchCount: count,
				subjectHit: subj,
			})
		}
	}
	candidates, capped := aggregateMatches(matches, req.Limit)
	return &Result{Candidates: candidates, Truncated: capped}, nil
}

// indexTokens extracts the index lookup tokens of a group's included terms.
// Phrase terms contribute their component words as an over-approximation;
// predicate verification restores exact adjacency.
func indexTokens(g query.OrGroup, policy core.SearchPolicy) []string {
	stop := make(map[string]bool, len(policy.StopWords))
	for _, w := range policy.StopWords {
		stop[w] = true
	}
	seen := make(map[string]bool)
	var tokens []string
	add := func(word string) {
		if stop[word] || utf8.RuneCountInString(word) < policy.MinTermLength || seen[word] {
			return
		}
		seen[word] = true
		tokens = append(tokens, word)
	}
	for _, t := range g.Include {
		if t.Phrase {
			for _, w := range query.SplitWords(t.Text) {
				add(w)
			}
			continue
		}
		add(t.Text)
	}
	return tokens
}

// intersectSorted intersects two ascending ID lists in one linear pass.
func intersectSorted(a, b []core.ID) []core.ID {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
