package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory; it is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored session or ErrNoSession.
func (s *MemoryStore) Load(_ context.Context) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, ErrNoSession
	}
	return *s.session, nil
}

// Save replaces the stored session.
func (s *MemoryStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()
	return nil
}

// Clear forgets the stored session.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	return nil
}
