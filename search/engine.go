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
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/boardsearch/cache"
	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/highlight"
	"github.com/poiesic/boardsearch/query"
	"github.com/poiesic/boardsearch/storage"
)

// Suggester proposes alternative terms for a fruitless query.
type Suggester interface {
	Suggest(ctx context.Context, terms []string) ([]string, error)
}

// Engine runs the full search pipeline: parse, classify, resolve scope,
// retrieve, rank, cache, paginate and render.
type Engine struct {
	boards   storage.BoardRepository
	topics   storage.TopicRepository
	messages storage.MessageRepository
	postings storage.PostingsIndex
	cache    *cache.Cache

	resolver  *Resolver
	ranker    *Ranker
	brute     *BruteForce
	indexed   *Indexed
	suggester Suggester
	monitor   Monitor
	logger    *slog.Logger

	policy  core.SearchPolicy
	weights core.RelevanceWeights
	shards  int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithPolicy replaces the default search policy.
func WithPolicy(policy core.SearchPolicy) EngineOption {
	return func(e *Engine) error {
		if err := core.ValidatePolicy(policy); err != nil {
			return err
		}
		e.policy = policy
		return nil
	}
}

// WithWeights replaces the default relevance weights.
func WithWeights(weights core.RelevanceWeights) EngineOption {
	return func(e *Engine) error {
		if err := core.ValidateWeights(weights); err != nil {
			return err
		}
		e.weights = weights
		return nil
	}
}

// WithMonitor installs a search monitor. Defaults to NoopMonitor.
func WithMonitor(m Monitor) EngineOption {
	return func(e *Engine) error {
		e.monitor = m
		return nil
	}
}

// WithSuggester installs a "did you mean" provider. Without one, responses
// simply carry no suggestions.
func WithSuggester(s Suggester) EngineOption {
	return func(e *Engine) error {
		e.suggester = s
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithScanShards sets the brute-force shard count. Defaults to the CPU
// count.
func WithScanShards(n int) EngineOption {
	return func(e *Engine) error {
		e.shards = n
		return nil
	}
}

// NewEngine assembles a search engine over the given repositories. The
// postings index may be storage.UnindexedPostings; retrieval then always
// scans.
func NewEngine(boards storage.BoardRepository, topics storage.TopicRepository, messages storage.MessageRepository, postings storage.PostingsIndex, resultCache *cache.Cache, opts ...EngineOption) (*Engine, error) {
	if boards == nil {
		return nil, ErrBoardRepositoryRequired
	}
	if topics == nil {
		return nil, ErrTopicRepositoryRequired
	}
	if messages == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if resultCache == nil {
		return nil, ErrCacheRequired
	}
	if postings == nil {
		postings = storage.UnindexedPostings{}
	}

	e := &Engine{
		boards:   boards,
		topics:   topics,
		messages: messages,
		postings: postings,
		cache:    resultCache,
		monitor:  NoopMonitor{},
		policy:   core.DefaultPolicy(),
		weights:  core.DefaultWeights(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	var err error
	e.resolver, err = NewResolver(boards, topics, e.logger)
	if err != nil {
		return nil, err
	}
	e.ranker, err = NewRanker(e.weights, e.policy, e.logger)
	if err != nil {
		return nil, err
	}
	e.brute, err = NewBruteForce(messages, e.shards, e.logger)
	if err != nil {
		return nil, err
	}
	if postings.Available() {
		e.indexed, err = NewIndexed(postings, messages, e.brute, e.logger)
		if err != nil {
			e.brute.Close()
			return nil, err
		}
	}
	return e, nil
}

// Close releases the engine's worker pool. Repositories are owned by the
// caller and stay open.
func (e *Engine) Close() error {
	return e.brute.Close()
}

// Search executes one request for the given session. vis must already be
// bound to the requesting user.
//
// User-correctable conditions come back as Response.Problems with a nil
// error; such a response never reached retrieval and never touched the
// cache. Infrastructure failures come back as a non-nil error.
func (e *Engine) Search(ctx context.Context, sessionKey string, raw core.RawQuery, vis Visibility) (*Response, error) {
	start := time.Now()
	resp := &Response{}
	var searchErr error
	defer func() {
		e.monitor.SearchDone(ctx, resp.TotalCount, searchErr, time.Since(start))
	}()

	sortSpec := raw.Sort
	if sortSpec.Field == 0 {
		sortSpec = core.DefaultSort()
	}

	classified, scope, ok, err := e.prepare(ctx, raw, vis, resp)
	if err != nil {
		searchErr = err
		return nil, err
	}
	if !ok {
		e.adviseOnProblems(ctx, raw, resp)
		return resp, nil
	}

	fingerprint := Fingerprint(classified.Groups, &scope, sortSpec, raw.SubjectOnly)
	resp.Fingerprint = fingerprint
	e.monitor.QueryClassified(ctx, raw.Text, len(classified.Groups))

	compute := func(ctx context.Context) (*core.ResultSet, error) {
		return e.materialize(ctx, classified.Groups, scope, sortSpec, raw.SubjectOnly, fingerprint)
	}
	set, hit, err := e.cache.GetOrCompute(ctx, sessionKey, fingerprint, compute)
	if err == nil && hit {
		var refreshed bool
		set, refreshed, err = e.reviveIfStale(ctx, sessionKey, fingerprint, set, compute)
		hit = hit && !refreshed
	}
	e.monitor.CacheLookup(ctx, fingerprint, hit)
	if err != nil {
		if errors.Is(err, ErrQueryNotSpecific) {
			resp.Problems = append(resp.Problems, Problem{Err: err})
			return resp, nil
		}
		searchErr = err
		return nil, err
	}

	resp.TotalCount = set.TotalCount
	if err := e.renderPage(ctx, resp, set, raw.Page, classified); err != nil {
		searchErr = err
		return nil, err
	}

	if set.TotalCount == 0 {
		e.advise(ctx, suggestibleTerms(classified.Included), resp)
	}
	return resp, nil
}

// prepare runs everything ahead of retrieval, collecting user-correctable
// problems instead of failing on the first. Returns ok=false when any
// problem was recorded.
func (e *Engine) prepare(ctx context.Context, raw core.RawQuery, vis Visibility, resp *Response) (query.Classified, ResolvedScope, bool, error) {
	var classified query.Classified
	var scope ResolvedScope

	if utf8.RuneCountInString(raw.Text) > e.policy.MaxQueryLength {
		// Recorded but not fatal here: classification still runs so the
		// response carries every correctable problem at once.
		resp.Problems = append(resp.Problems, Problem{Err: query.ErrQueryTooLong})
	}

	searchType := raw.SearchType
	if searchType == 0 {
		searchType = core.SearchTypeAll
	}
	classified, err := query.Classify(query.Parse(raw.Text), searchType, e.policy)
	if err != nil {
		p := Problem{Err: err}
		p.Terms = append(p.Terms, classified.Blacklisted...)
		p.Terms = append(p.Terms, classified.TooShort...)
		resp.Problems = append(resp.Problems, p)
	}

	scope, err = e.resolver.Resolve(ctx, raw.Scope, vis)
	if err != nil {
		if errors.Is(err, ErrNoVisibleScope) || errors.Is(err, ErrNotFound) {
			resp.Problems = append(resp.Problems, Problem{Err: err})
			return classified, scope, false, nil
		}
		return classified, scope, false, err
	}
	return classified, scope, len(resp.Problems) == 0, nil
}

// materialize runs retrieval and ranking, producing the snapshot that the
// cache stores.
func (e *Engine) materialize(ctx context.Context, groups []query.OrGroup, scope ResolvedScope, sortSpec core.SortSpec, subjectOnly bool, fingerprint string) (*core.ResultSet, error) {
	backend := SelectBackend(e.indexed, e.brute, e.postings)
	req := &Request{
		Groups:      groups,
		Scope:       scope,
		Policy:      e.policy,
		SubjectOnly: subjectOnly,
		Limit:       e.policy.ResultLimit,
	}

	retrievalStart := time.Now()
	res, err := backend.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	e.monitor.RetrievalDone(ctx, backend.Name(), len(res.Candidates), res.Truncated, time.Since(retrievalStart))

	topicIDs := make([]core.ID, 0, len(res.Candidates))
	seen := make(map[core.ID]bool, len(res.Candidates))
	for _, c := range res.Candidates {
		if !seen[c.TopicId] {
			seen[c.TopicId] = true
			topicIDs = append(topicIDs, c.TopicId)
		}
	}
	topics, err := e.topics.GetTopics(ctx, topicIDs...)
	if err != nil {
		return nil, err
	}
	topicsByID := make(map[core.ID]*core.Topic, len(topics))
	for _, t := range topics {
		topicsByID[t.Id] = t
	}

	maxID, err := e.messages.MaxMessageID(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := e.ranker.Rank(res.Candidates, topicsByID, maxID, sortSpec, subjectOnly)
	if err != nil {
		return nil, err
	}
	return &core.ResultSet{
		Fingerprint: fingerprint,
		Entries:     entries,
		CreatedAt:   time.Now(),
		TotalCount:  len(entries),
	}, nil
}

// reviveIfStale probes one sampled entry of a cache hit against the store.
// A snapshot referencing a deleted message is invalidated and recomputed
// once; the sampling keeps the hot path at a single point read.
func (e *Engine) reviveIfStale(ctx context.Context, sessionKey, fingerprint string, set *core.ResultSet, compute func(context.Context) (*core.ResultSet, error)) (*core.ResultSet, bool, error) {
	if len(set.Entries) == 0 {
		return set, false, nil
	}
	exists, err := e.messages.HasMessage(ctx, set.Entries[0].MsgId)
	if err != nil || exists {
		return set, false, err
	}
	e.logger.Debug("cached result set stale, recomputing", "fingerprint", fingerprint)
	if err := e.cache.Invalidate(ctx, sessionKey, fingerprint); err != nil {
		return nil, false, err
	}
	set, _, err = e.cache.GetOrCompute(ctx, sessionKey, fingerprint, compute)
	return set, true, err
}

// renderPage hydrates and renders the requested window of the snapshot.
func (e *Engine) renderPage(ctx context.Context, resp *Response, set *core.ResultSet, page core.Pagination, classified query.Classified) error {
	entries := cache.Paginate(set, page)
	if len(entries) == 0 {
		return nil
	}

	msgIDs := make([]core.ID, len(entries))
	for i, en := range entries {
		msgIDs[i] = en.MsgId
	}
	msgs, err := e.messages.GetMessages(ctx, msgIDs...)
	if err != nil {
		return err
	}
	msgsByID := make(map[core.ID]*core.Message, len(msgs))
	for _, m := range msgs {
		msgsByID[m.Id] = m
	}

	topicIDs := make([]core.ID, 0, len(entries))
	topicSeen := make(map[core.ID]bool, len(entries))
	for _, en := range entries {
		if !topicSeen[en.TopicId] {
			topicSeen[en.TopicId] = true
			topicIDs = append(topicIDs, en.TopicId)
		}
	}
	topics, err := e.topics.GetTopics(ctx, topicIDs...)
	if err != nil {
		return err
	}
	topicsByID := make(map[core.ID]*core.Topic, len(topics))
	for _, t := range topics {
		topicsByID[t.Id] = t
	}

	boardsByID := make(map[core.ID]*core.Board)
	for _, en := range entries {
		if _, ok := boardsByID[en.BoardId]; ok {
			continue
		}
		board, err := e.boards.GetBoard(ctx, en.BoardId)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		boardsByID[en.BoardId] = board
	}

	terms := termTexts(classified.Included)
	pred := newMessagePredicate(classified.Groups, e.policy)
	now := time.Now()

	resp.Page = make([]*PageEntry, 0, len(entries))
	for _, en := range entries {
		msg, ok := msgsByID[en.MsgId]
		if !ok {
			// Deleted since the snapshot; the sampled probe cannot catch
			// every row.
			e.logger.Debug("result row message missing, skipping", "msg_id", en.MsgId)
			continue
		}
		topic := topicsByID[en.TopicId]
		if topic == nil {
			continue
		}
		_, subjectHit, _ := pred.match(msg, false)

		snippet := highlight.Snippet(highlight.Text(msg.Body), terms, e.policy.PreviewLength)
		resp.Page = append(resp.Page, &PageEntry{
			Board:            boardsByID[en.BoardId],
			Topic:            topic,
			Message:          msg,
			Relevance:        en.Relevance,
			DisplayRelevance: e.ranker.ScoreRow(msg, topic, en.MatchCount, subjectHit, now),
			MatchCount:       en.MatchCount,
			SubjectHTML:      highlight.Highlight(msg.Subject, terms),
			PreviewHTML:      highlight.Highlight(snippet, terms),
		})
	}
	return nil
}

// adviseOnProblems offers suggestions when classification rejected every
// term; other problem kinds gain nothing from alternatives.
func (e *Engine) adviseOnProblems(ctx context.Context, raw core.RawQuery, resp *Response) {
	for _, p := range resp.Problems {
		if errors.Is(p.Err, query.ErrEmptyQuery) {
			e.advise(ctx, suggestibleWords(query.Parse(raw.Text).Words), resp)
			return
		}
	}
}

func (e *Engine) advise(ctx context.Context, terms []string, resp *Response) {
	if e.suggester == nil || len(terms) == 0 {
		return
	}
	alts, err := e.suggester.Suggest(ctx, terms)
	if err != nil {
		e.logger.Warn("suggestion lookup failed", "err", err)
		return
	}
	resp.DidYouMean = alts
}

func termTexts(terms []query.Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Text
	}
	return out
}

// suggestibleTerms keeps the terms worth correcting: single words with no
// digits. Phrases and model numbers gain nothing from spelling alternatives.
func suggestibleTerms(terms []query.Term) []string {
	words := make([]string, 0, len(terms))
	for _, t := range terms {
		if !t.Phrase {
			words = append(words, t.Text)
		}
	}
	return suggestibleWords(words)
}

func suggestibleWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if strings.ContainsFunc(w, unicode.IsDigit) {
			continue
		}
		out = append(out, w)
	}
	return out
}
