package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SearchType selects how multiple query terms combine.
type SearchType int

const (
	// SearchTypeAll requires every included term to match (AND).
	SearchTypeAll SearchType = iota + 1
	// SearchTypeAny matches documents containing any included term (OR).
	SearchTypeAny
)

// SortField selects the primary ordering of search results.
type SortField int

const (
	// SortByRelevance orders by the weighted relevance score.
	SortByRelevance SortField = iota + 1
	// SortByMessageID orders by message ID (a proxy for recency).
	SortByMessageID
)

// SortSpec describes the requested result ordering.
type SortSpec struct {
	Field      SortField
	Descending bool
}

// DefaultSort returns the standard ordering: relevance, descending.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByRelevance, Descending: true}
}

// Board is the container unit that topics and messages belong to.
// Visibility is evaluated per board.
type Board struct {
	Id         ID
	Name       string
	RecycleBin bool // Recycle-bin boards are excluded from "all boards" scopes
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Topic is a thread of messages sharing context. Several ranking factors
// operate at topic granularity rather than message granularity.
type Topic struct {
	Id         ID
	BoardId    ID
	FirstMsgId ID
	LastMsgId  ID
	ReplyCount int
	Sticky     bool
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Message is a single searchable unit of content. A message belongs to
// exactly one topic and one board.
type Message struct {
	Id         ID
	TopicId    ID
	BoardId    ID
	AuthorId   ID
	AuthorName string
	Subject    string
	Body       string
	PostedAt   time.Time // When the message was originally posted
	InsertedAt time.Time // When the record was inserted into the database
	UpdatedAt  time.Time // When the record was last updated
}

// ScopeSpec narrows a search to a subset of the corpus. An empty BoardIds
// slice means "all boards visible to the caller".
type ScopeSpec struct {
	BoardIds []ID
	TopicId  ID            // 0 = not topic-scoped
	Author   string        // Exact author name, empty = any author
	MinAge   time.Duration // Only messages at least this old
	MaxAge   time.Duration // Only messages at most this old, 0 = unbounded
}

// Pagination is the requested result window. It never participates in the
// result-set fingerprint.
type Pagination struct {
	Offset int
	Limit  int
}

// RawQuery is the immutable search request as received from the caller.
type RawQuery struct {
	Text        string
	Scope       ScopeSpec
	Sort        SortSpec
	Page        Pagination
	SearchType  SearchType
	SubjectOnly bool
}

// RelevanceWeights holds the integer weight of each ranking factor.
// The zero value is unusable: ranking requires a positive weight sum.
type RelevanceWeights struct {
	Frequency    int
	Age          int
	Length       int
	Subject      int
	FirstMessage int
	Sticky       int
}

// DefaultWeights returns the standard weight configuration.
func DefaultWeights() RelevanceWeights {
	return RelevanceWeights{
		Frequency:    30,
		Age:          25,
		Length:       20,
		Subject:      15,
		FirstMessage: 10,
		Sticky:       5,
	}
}

// Sum returns the total of all weights.
func (w RelevanceWeights) Sum() int {
	return w.Frequency + w.Age + w.Length + w.Subject + w.FirstMessage + w.Sticky
}

// SearchPolicy holds the tunable limits and switches of the search engine.
type SearchPolicy struct {
	// MaxQueryLength is the maximum raw query length in runes.
	MaxQueryLength int

	// MinTermLength is the minimum term length in codepoints; shorter terms
	// are ignored.
	MinTermLength int

	// MaxTerms caps the number of included terms after deduplication.
	MaxTerms int

	// MaxIndexedTerms caps how many terms per OR group the indexed backend
	// will look up postings for.
	MaxIndexedTerms int

	// ForceIndex rejects queries that cannot use the term index instead of
	// falling back to a full scan.
	ForceIndex bool

	// MatchWholeWords wraps brute-force term predicates in word boundaries.
	MatchWholeWords bool

	// ResultLimit caps the number of candidates a backend may return.
	ResultLimit int

	// ScanRowCap is the hard cap on rows examined by a brute-force pass.
	ScanRowCap int

	// RecentWindowDivisor controls the first brute-force pass: it scans
	// roughly the last 1/RecentWindowDivisor of the message-ID space.
	// A value of 3 approximates the last 30%.
	RecentWindowDivisor int

	// HugeTopicPosts is the reply count at which the length factor saturates.
	HugeTopicPosts int

	// PreviewLength is the snippet window size in runes.
	PreviewLength int

	// StopWords are terms ignored during classification.
	StopWords []string
}

// DefaultPolicy returns the standard search policy.
func DefaultPolicy() SearchPolicy {
	return SearchPolicy{
		MaxQueryLength:      100,
		MinTermLength:       2,
		MaxTerms:            10,
		MaxIndexedTerms:     7,
		ForceIndex:          false,
		MatchWholeWords:     false,
		ResultLimit:         1000,
		ScanRowCap:          100000,
		RecentWindowDivisor: 3,
		HugeTopicPosts:      300,
		PreviewLength:       250,
		StopWords:           DefaultStopWords(),
	}
}

// DefaultStopWords returns the built-in stop-word blacklist.
func DefaultStopWords() []string {
	return []string{
		"the", "a", "an", "be", "is", "are", "was", "to", "of", "and",
		"in", "that", "have", "it", "for", "not", "on", "with", "as",
		"you", "do", "at", "this", "but", "by", "from",
	}
}

// Checkpoint records indexing progress so incremental runs can resume.
type Checkpoint struct {
	Kind      string
	LastMsgId ID
	UpdatedAt time.Time
}

// ResultEntry is one row of a materialized result set.
type ResultEntry struct {
	BoardId    ID
	TopicId    ID
	MsgId      ID
	Relevance  float64
	MatchCount int
}

// ResultSet is a point-in-time snapshot of a ranked search outcome,
// materialized once per fingerprint and reused across pages. TotalCount is
// frozen at creation and does not track later store mutations.
type ResultSet struct {
	Fingerprint string
	Entries     []ResultEntry
	CreatedAt   time.Time
	TotalCount  int
}
