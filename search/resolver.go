package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/boardsearch/core"
	"github.com/poiesic/boardsearch/storage"
)

// Visibility is the external permission predicate, already bound to the
// requesting user by the caller. Implementations must be side-effect-free
// and consistent within one request.
type Visibility interface {
	// CanSee reports whether the caller may read the given board.
	CanSee(ctx context.Context, boardID core.ID) (bool, error)

	// VisibleBoards returns every board the caller may read.
	VisibleBoards(ctx context.Context) ([]core.ID, error)
}

// ResolvedScope is the effective search scope after visibility resolution.
type ResolvedScope struct {
	BoardIds []core.ID
	TopicId  core.ID // 0 = not topic-scoped
	Author   string
	MinAge   time.Duration
	MaxAge   time.Duration

	// AllButRecycle hints that the scope equals every board minus the
	// recycle bin, letting a backend use a negated-membership filter
	// instead of a large membership list. Purely a query-shape
	// optimization; never affects results.
	AllButRecycle bool
	RecycleBoard  core.ID

	boardSet map[core.ID]bool
}

// Contains reports whether a board is inside the resolved scope.
func (s *ResolvedScope) Contains(boardID core.ID) bool {
	if s.AllButRecycle {
		return boardID != s.RecycleBoard
	}
	return s.boardSet[boardID]
}

// Resolver turns a ScopeSpec into a ResolvedScope by consulting the
// visibility predicate and the board/topic repositories.
type Resolver struct {
	boards storage.BoardRepository
	topics storage.TopicRepository
	logger *slog.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(boards storage.BoardRepository, topics storage.TopicRepository, logger *slog.Logger) (*Resolver, error) {
	if boards == nil {
		return nil, ErrBoardRepositoryRequired
	}
	if topics == nil {
		return nil, ErrTopicRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{boards: boards, topics: topics, logger: logger}, nil
}

// Resolve computes the effective scope for one request.
//
// A topic-scoped request collapses to the single board owning the topic;
// a missing or invisible topic fails with ErrNotFound. An empty board list
// means "all visible boards minus the recycle bin". A scope that resolves
// to zero boards fails with ErrNoVisibleScope.
func (r *Resolver) Resolve(ctx context.Context, spec core.ScopeSpec, vis Visibility) (ResolvedScope, error) {
	scope := ResolvedScope{
		Author: spec.Author,
		MinAge: spec.MinAge,
		MaxAge: spec.MaxAge,
	}

	if spec.TopicId != 0 {
		topic, err := r.topics.GetTopic(ctx, spec.TopicId)
		if errors.Is(err, storage.ErrNotFound) {
			return scope, fmt.Errorf("%w: topic %d", ErrNotFound, spec.TopicId)
		}
		if err != nil {
			return scope, err
		}
		ok, err := vis.CanSee(ctx, topic.BoardId)
		if err != nil {
			return scope, err
		}
		if !ok {
			return scope, fmt.Errorf("%w: topic %d", ErrNotFound, spec.TopicId)
		}
		scope.TopicId = topic.Id
		scope.BoardIds = []core.ID{topic.BoardId}
		scope.boardSet = map[core.ID]bool{topic.BoardId: true}
		return scope, nil
	}

	recycle, total, err := r.recycleBoard(ctx)
	if err != nil {
		return scope, err
	}
	scope.RecycleBoard = recycle

	if len(spec.BoardIds) == 0 {
		visible, err := vis.VisibleBoards(ctx)
		if err != nil {
			return scope, err
		}
		scope.boardSet = make(map[core.ID]bool, len(visible))
		for _, id := range visible {
			if id == recycle {
				continue
			}
			if !scope.boardSet[id] {
				scope.boardSet[id] = true
				scope.BoardIds = append(scope.BoardIds, id)
			}
		}
		// All boards minus the recycle bin: a backend may filter by
		// exclusion instead of membership.
		withoutRecycle := total
		if recycle != 0 {
			withoutRecycle--
		}
		scope.AllButRecycle = recycle != 0 && len(scope.BoardIds) == withoutRecycle
	} else {
		scope.boardSet = make(map[core.ID]bool, len(spec.BoardIds))
		for _, id := range spec.BoardIds {
			ok, err := vis.CanSee(ctx, id)
			if err != nil {
				return scope, err
			}
			if !ok || scope.boardSet[id] {
				continue
			}
			scope.boardSet[id] = true
			scope.BoardIds = append(scope.BoardIds, id)
		}
	}

	if len(scope.BoardIds) == 0 {
		return scope, ErrNoVisibleScope
	}
	return scope, nil
}

// recycleBoard returns the recycle-bin board ID (0 when none) and the total
// board count.
func (r *Resolver) recycleBoard(ctx context.Context) (core.ID, int, error) {
	boards, err := r.boards.AllBoards(ctx)
	if err != nil {
		return 0, 0, err
	}
	var recycle core.ID
	for _, b := range boards {
		if b.RecycleBin {
			recycle = b.Id
			break
		}
	}
	return recycle, len(boards), nil
}

// AllVisible is a Visibility that exposes every stored board, for callers
// without a permission system (tests, the CLI).
type AllVisible struct {
	Boards storage.BoardRepository
}

func (a AllVisible) CanSee(ctx context.Context, boardID core.ID) (bool, error) {
	_, err := a.Boards.GetBoard(ctx, boardID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a AllVisible) VisibleBoards(ctx context.Context) ([]core.ID, error) {
	boards, err := a.Boards.AllBoards(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]core.ID, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.Id)
	}
	return ids, nil
}
