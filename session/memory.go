package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It mirrors [FileStore]
// semantics, including lazy expiry deletion on Get, without any persistence.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, token string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !s.valid() || s.Expired(m.now()) {
		delete(m.sessions, token)
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.sessions[token]
	delete(m.sessions, token)
	return existed, nil
}

func (m *MemoryStore) DeleteForUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) CleanupExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for token, s := range m.sessions {
		if !s.valid() || s.Expired(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	count := 0
	for _, s := range m.sessions {
		if s.valid() && !s.Expired(now) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) CountForUser(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.valid() && !s.Expired(now) {
			count++
		}
	}
	return count, nil
}
