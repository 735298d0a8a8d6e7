package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps attempt history in process memory with [FileStore]
// semantics.
type MemoryStore struct {
	mu      sync.RWMutex
	history map[string][]Attempt
	policy  Policy
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(policy Policy) (*MemoryStore, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &MemoryStore{
		history: make(map[string][]Attempt),
		policy:  policy,
		now:     time.Now,
	}, nil
}

func (m *MemoryStore) Record(_ context.Context, ip string, success bool, userAgent *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	attempts := pruneAttempts(m.history[ip], now.Add(-m.policy.Window))
	m.history[ip] = append(attempts, Attempt{
		Timestamp: now.UTC(),
		Success:   success,
		UserAgent: userAgent,
	})
	return nil
}

func (m *MemoryStore) Allowed(ctx context.Context, ip string) (bool, error) {
	failed, err := m.FailedCount(ctx, ip)
	if err != nil {
		return false, err
	}
	return failed < m.policy.MaxAttempts, nil
}

func (m *MemoryStore) FailedCount(_ context.Context, ip string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return countFailures(m.history[ip], m.now().Add(-m.policy.Window)), nil
}

func (m *MemoryStore) Cleanup(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.policy.Window)
	cleaned := 0
	for ip, attempts := range m.history {
		kept := pruneAttempts(attempts, cutoff)
		if len(kept) == len(attempts) {
			continue
		}
		cleaned++
		if len(kept) == 0 {
			delete(m.history, ip)
			continue
		}
		m.history[ip] = kept
	}
	return cleaned, nil
}
