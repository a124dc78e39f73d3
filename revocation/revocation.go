// Package revocation keeps the set of logged-out token ids until they would have expired anyway.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Store records revoked JWT ids.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Default is the store consulted by the auth middleware.
var Default Store = NewMemoryStore()

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore returns a process-local Store. Entries vanish on restart.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *memoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = s.now().Add(ttl)
	s.sweep()
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(s.now()) {
		delete(s.entries, jti)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries; caller holds mu.
func (s *memoryStore) sweep() {
	now := s.now()
	for k, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, k)
		}
	}
}
