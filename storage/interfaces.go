package storage

import (
	"context"

	"github.com/poiesic/boardsearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// BoardRepository provides operations for managing boards.
type BoardRepository interface {
	Repository
	// AddBoards adds one or more boards to storage.
	// For boards with ID=0, generates new IDs from sequence.
	// Returns the boards with generated IDs and timestamps populated.
	AddBoards(ctx context.Context, boards ...*core.Board) ([]*core.Board, error)

	// GetBoard retrieves a single board by ID.
	// Returns ErrNotFound if the board doesn't exist.
	GetBoard(ctx context.Context, id core.ID) (*core.Board, error)

	// AllBoards retrieves every board, ordered by ID.
	AllBoards(ctx context.Context) ([]*core.Board, error)

	// DeleteBoards removes boards by their IDs.
	// Returns ErrNotFound if any board doesn't exist.
	DeleteBoards(ctx context.Context, ids ...core.ID) error
}

// TopicRepository provides operations for managing topics.
type TopicRepository interface {
	Repository
	// AddTopics adds one or more topics to storage.
	// For topics with ID=0, generates new IDs from sequence.
	AddTopics(ctx context.Context, topics ...*core.Topic) ([]*core.Topic, error)

	// UpdateTopics updates existing topics, refreshing UpdatedAt.
	// Returns ErrNotFound if any topic doesn't exist.
	UpdateTopics(ctx context.Context, topics ...*core.Topic) ([]*core.Topic, error)

	// GetTopic retrieves a single topic by ID.
	// Returns ErrNotFound if the topic doesn't exist.
	GetTopic(ctx context.Context, id core.ID) (*core.Topic, error)

	// GetTopics retrieves multiple topics by their IDs.
	// Returns only the topics that exist (no error for missing topics).
	GetTopics(ctx context.Context, ids ...core.ID) ([]*core.Topic, error)

	// GetTopicsByBoard retrieves every topic belonging to a board.
	GetTopicsByBoard(ctx context.Context, boardID core.ID) ([]*core.Topic, error)

	// DeleteTopics removes topics by their IDs.
	DeleteTopics(ctx context.Context, ids ...core.ID) error
}

// MessageRepository provides operations for managing messages.
type MessageRepository interface {
	Repository
	// AddMessages adds one or more messages to storage.
	// For messages with ID=0, generates new IDs from sequence.
	// Sets InsertedAt if not already set.
	AddMessages(ctx context.Context, msgs ...*core.Message) ([]*core.Message, error)

	// GetMessage retrieves a single message by ID.
	// Returns ErrNotFound if the message doesn't exist.
	GetMessage(ctx context.Context, id core.ID) (*core.Message, error)

	// GetMessages retrieves multiple messages by their IDs, the bulk
	// hydration path for result pages.
	// Returns only the messages that exist (no error for missing messages).
	GetMessages(ctx context.Context, ids ...core.ID) ([]*core.Message, error)

	// HasMessage reports whether a message exists, a lightweight existence
	// probe for cache staleness checks.
	HasMessage(ctx context.Context, id core.ID) (bool, error)

	// DeleteMessages removes messages by their IDs.
	// Returns ErrNotFound if any message doesn't exist.
	DeleteMessages(ctx context.Context, ids ...core.ID) error

	// MaxMessageID returns the highest assigned message ID, 0 when empty.
	MaxMessageID(ctx context.Context) (core.ID, error)

	// CountMessages returns the number of stored messages.
	CountMessages(ctx context.Context) (int, error)

	// ScanMessages visits messages with lo <= ID <= hi in ascending ID
	// order. The visit function returns false to stop the scan early.
	// The context is checked between rows; cancellation aborts the scan.
	ScanMessages(ctx context.Context, lo, hi core.ID, visit func(*core.Message) (bool, error)) error
}

// PostingsIndex is the capability-gated term index. Backends without an
// index report Available() == false and the engine falls back to scanning.
type PostingsIndex interface {
	// Available reports whether indexed term lookup is supported.
	Available() bool

	// AddPostings associates message IDs with a term.
	AddPostings(ctx context.Context, term string, ids ...core.ID) error

	// RemovePostings removes message IDs from a term's posting list.
	RemovePostings(ctx context.Context, term string, ids ...core.ID) error

	// GetPostings returns up to limit message IDs for a term, ascending.
	// A limit <= 0 means no limit. Unknown terms yield an empty list.
	GetPostings(ctx context.Context, term string, limit int) ([]core.ID, error)

	// PostingCount returns the number of postings for a term, used as a
	// selectivity estimate when ordering indexed lookups.
	PostingCount(ctx context.Context, term string) (int, error)

	// DropAll removes every posting, for full index rebuilds.
	DropAll(ctx context.Context) error
}

// CheckpointRepository persists indexing progress markers.
type CheckpointRepository interface {
	// GetCheckpoint retrieves a checkpoint by kind.
	// Returns ErrNotFound if no checkpoint exists.
	GetCheckpoint(ctx context.Context, kind string) (*core.Checkpoint, error)

	// SetCheckpoint stores a checkpoint, overwriting any previous value.
	SetCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error
}
