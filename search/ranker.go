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
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/boardsearch/core"
)

// displayRecencyWindow is the look-back over which the per-row recency
// factor decays from 1 to 0.
const displayRecencyWindow = 30 * 24 * time.Hour

// Ranker scores candidate topics and orders them into a result set.
//
// Scoring is a weighted average of normalized 0..1 factors, scaled to
// 0..1000. Search-time scoring uses topic aggregates (reply count, last
// activity, stickiness); per-row display scoring swaps the aggregate age
// factor for the message's own posting recency.
type Ranker struct {
	weights core.RelevanceWeights
	policy  core.SearchPolicy
	logger  *slog.Logger
}

// NewRanker creates a Ranker. Weights must be non-negative with a positive
// sum.
func NewRanker(weights core.RelevanceWeights, policy core.SearchPolicy, logger *slog.Logger) (*Ranker, error) {
	if err := core.ValidateWeights(weights); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{weights: weights, policy: policy, logger: logger}, nil
}

// Rank scores every candidate and returns result entries in the requested
// order. Relevance ties break toward the higher anchor-message ID, so equal
// scores favor newer topics and the total order is deterministic.
//
// Candidates whose topic record is missing are dropped; a stale index must
// not surface phantom rows.
func (r *Ranker) Rank(candidates []Candidate, topics map[core.ID]*core.Topic, maxMsgID core.ID, sortSpec core.SortSpec, subjectOnly bool) ([]core.ResultEntry, error) {
	w := r.weights
	if subjectOnly {
		// Body-derived factors carry no signal when only subjects were
		// searched.
		w.Frequency = 0
		w.Length = 0
	}
	if w.Sum() == 0 {
		return nil, ErrZeroWeights
	}

	entries := make([]core.ResultEntry, 0, len(candidates))
	for _, c := range candidates {
		topic, ok := topics[c.TopicId]
		if !ok {
			r.logger.Debug("candidate topic missing, dropping", "topic_id", c.TopicId, "msg_id", c.MsgId)
			continue
		}
		entries = append(entries, core.ResultEntry{
			BoardId:    c.BoardId,
			TopicId:    c.TopicId,
			MsgId:      c.MsgId,
			MatchCount: c.MatchCount,
			Relevance:  r.scoreTopic(c, topic, maxMsgID, w),
		})
	}

	switch sortSpec.Field {
	case core.SortByMessageID:
		sort.SliceStable(entries, func(i, j int) bool {
			if sortSpec.Descending {
				return entries[i].MsgId > entries[j].MsgId
			}
			return entries[i].MsgId < entries[j].MsgId
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Relevance != b.Relevance {
				if sortSpec.Descending {
					return a.Relevance > b.Relevance
				}
				return a.Relevance < b.Relevance
			}
			return a.MsgId > b.MsgId
		})
	}
	return entries, nil
}

// scoreTopic computes the search-time relevance of one candidate topic.
func (r *Ranker) scoreTopic(c Candidate, topic *core.Topic, maxMsgID core.ID, w core.RelevanceWeights) float64 {
	frequency := clamp01(float64(c.MatchCount) / float64(topic.ReplyCount+1))
	age := recentWindowPosition(topic.LastMsgId, maxMsgID, r.policy.RecentWindowDivisor)
	length := 0.0
	if r.policy.HugeTopicPosts > 0 {
		length = clamp01(float64(topic.ReplyCount) / float64(r.policy.HugeTopicPosts))
	}
	subject := boolFactor(c.SubjectHit)
	first := boolFactor(c.MsgId == topic.FirstMsgId)
	sticky := boolFactor(topic.Sticky)

	weighted := float64(w.Frequency)*frequency +
		float64(w.Age)*age +
		float64(w.Length)*length +
		float64(w.Subject)*subject +
		float64(w.FirstMessage)*first +
		float64(w.Sticky)*sticky
	return 1000 * weighted / float64(w.Sum())
}

// ScoreRow computes the display-time relevance of a single result row. The
// age factor is the message's own posting recency over a 30-day window; the
// remaining factors match search-time scoring.
func (r *Ranker) ScoreRow(msg *core.Message, topic *core.Topic, matchCount int, subjectHit bool, now time.Time) float64 {
	w := r.weights
	if w.Sum() == 0 {
		return 0
	}

	frequency := clamp01(float64(matchCount) / float64(topic.ReplyCount+1))
	age := clamp01(1 - now.Sub(msg.PostedAt).Seconds()/displayRecencyWindow.Seconds())
	length := 0.0
	if r.policy.HugeTopicPosts > 0 {
		length = clamp01(float64(topic.ReplyCount) / float64(r.policy.HugeTopicPosts))
	}
	subject := boolFactor(subjectHit)
	first := boolFactor(msg.Id == topic.FirstMsgId)
	sticky := boolFactor(topic.Sticky)

	weighted := float64(w.Frequency)*frequency +
		float64(w.Age)*age +
		float64(w.Length)*length +
		float64(w.Subject)*subject +
		float64(w.FirstMessage)*first +
		float64(w.Sticky)*sticky
	return 1000 * weighted / float64(w.Sum())
}

// recentWindowPosition maps an ID to its position inside the recent slice of
// the ID space: 1 at the newest ID, 0 at or below the window start.
func recentWindowPosition(id, maxID core.ID, divisor int) float64 {
	if maxID == 0 || id >= maxID {
		return 1
	}
	windowLo := core.ID(0)
	if divisor > 1 {
		windowLo = maxID - maxID/core.ID(divisor)
	}
	if id <= windowLo {
		return 0
	}
	return float64(id-windowLo) / float64(maxID-windowLo)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolFactor(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
