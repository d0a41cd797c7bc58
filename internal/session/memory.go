package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in a process-local map. Mutations run under
// the store lock, so concurrent webhook deliveries for the same call SID
// are serialized instead of racing last-write-wins.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.CallSID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, callSID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[callSID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) Update(_ context.Context, callSID string, mutate func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[callSID]
	if !ok {
		return ErrNotFound
	}
	mutate(sess)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, callSID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, callSID)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
