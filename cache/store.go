package cache

import (
	"context"
	"sync"
	"time"
)

// SessionStore persists serialized result sets keyed by session and
// fingerprint. Implementations must be safe for concurrent use.
type SessionStore interface {
	// Get retrieves a stored result set. Returns ErrNotFound when absent.
	Get(ctx context.Context, sessionKey, fingerprint string) ([]byte, error)

	// Put stores a result set, overwriting any previous value.
	Put(ctx context.Context, sessionKey, fingerprint string, data []byte) error

	// Delete removes a stored result set. Absent entries are not an error.
	Delete(ctx context.Context, sessionKey, fingerprint string) error
}

type memoryEntry struct {
	data     []byte
	storedAt time.Time
}

// MemorySessionStore is an in-process SessionStore with a per-session entry
// cap and optional TTL. By default each session holds a single live result
// set; a search with a new fingerprint evicts the previous one. Eviction
// removes the oldest entry of the session.
type MemorySessionStore struct {
	mu            sync.RWMutex
	sessions      map[string]map[string]memoryEntry
	maxPerSession int
	ttl           time.Duration
}

// MemoryStoreOption configures a MemorySessionStore.
type MemoryStoreOption func(*MemorySessionStore)

// WithMaxPerSession caps how many result sets one session may hold.
func WithMaxPerSession(n int) MemoryStoreOption {
	return func(s *MemorySessionStore) { s.maxPerSession = n }
}

// WithTTL expires entries after the given duration. Zero disables expiry.
func WithTTL(d time.Duration) MemoryStoreOption {
	return func(s *MemorySessionStore) { s.ttl = d }
}

// NewMemorySessionStore creates an in-process session store.
func NewMemorySessionStore(opts ...MemoryStoreOption) *MemorySessionStore {
	s := &MemorySessionStore{
		sessions:      make(map[string]map[string]memoryEntry),
		maxPerSession: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionKey, fingerprint string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionKey][fingerprint]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && time.Since(entry.storedAt) > s.ttl {
		s.mu.Lock()
		delete(s.sessions[sessionKey], fingerprint)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.data, nil
}

func (s *MemorySessionStore) Put(ctx context.Context, sessionKey, fingerprint string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionKey]
	if !ok {
		session = make(map[string]memoryEntry)
		s.sessions[sessionKey] = session
	}
	if _, exists := session[fingerprint]; !exists && s.maxPerSession > 0 && len(session) >= s.maxPerSession {
		s.evictOldest(session)
	}
	session[fingerprint] = memoryEntry{data: data, storedAt: time.Now()}
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionKey, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionKey]; ok {
		delete(session, fingerprint)
		if len(session) == 0 {
			delete(s.sessions, sessionKey)
		}
	}
	return nil
}

// DropSession removes every entry of one session, for logout or session
// expiry hooks.
func (s *MemorySessionStore) DropSession(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey)
}

func (s *MemorySessionStore) evictOldest(session map[string]memoryEntry) {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range session {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, first = k, e.storedAt, false
		}
	}
	delete(session, oldestKey)
}
