package indexing

import "errors"

var (
	// ErrMessageRepositoryRequired is returned when a message repository is not provided.
	ErrMessageRepositoryRequired = errors.New("message repository required")

	// ErrPostingsRequired is returned when a postings index is not provided.
	ErrPostingsRequired = errors.New("postings index required")

	// ErrCheckpointsRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointsRequired = errors.New("checkpoint repository required")
)
