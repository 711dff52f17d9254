// Package chat implements the conversation turn orchestrator and the
// in-memory session store behind it.
package chat

import (
	"sync"

	"github.com/fiine-pro/support-chat/internal/domain"
)

// SessionStore is the authoritative conversation-id → session mapping.
// Sessions are mutable turn state only; durable history lives in the
// store.Repository.
type SessionStore interface {
	Get(conversationID string) (*domain.Session, bool)
	Save(conversationID string, session *domain.Session)
	Delete(conversationID string)

	// Lock acquires the per-conversation mutex and returns its release
	// function. Holding it for the duration of a turn serializes concurrent
	// turns on the same conversation, closing the lost-update race a bare
	// get/save pair would have.
	Lock(conversationID string) func()
}

// MemorySessionStore keeps sessions in process memory. State does not survive
// restarts; that is the reference design, not an oversight.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	locks    map[string]*sync.Mutex
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get returns the session for a conversation id, if present.
func (s *MemorySessionStore) Get(conversationID string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[conversationID]
	return sess, ok
}

// Save stores the session under its conversation id.
func (s *MemorySessionStore) Save(conversationID string, session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conversationID] = session
}

// Delete removes a session and its lock.
func (s *MemorySessionStore) Delete(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
	delete(s.locks, conversationID)
}

// Lock acquires the per-conversation mutex, creating it on first use.
func (s *MemorySessionStore) Lock(conversationID string) func() {
	s.mu.Lock()
	m, ok := s.locks[conversationID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[conversationID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
