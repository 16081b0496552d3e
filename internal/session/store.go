// Package session tracks which subjects currently hold an active session.
// Signed tokens already carry their own expiry; the store exists so logout
// can revoke a session before its token expires. Multiple requests may
// authenticate and log out concurrently, so implementations must be safe
// for concurrent use.
package session

import (
	"context"
	"sync"
	"time"
)

type Store interface {
	// Activate marks the subject as having a live session until expiry.
	Activate(ctx context.Context, subject string, ttl time.Duration) error

	// Revoke ends the subject's session. Revoking an absent session is a
	// no-op.
	Revoke(ctx context.Context, subject string) error

	// Active reports whether the subject currently holds a live session.
	Active(ctx context.Context, subject string) (bool, error)
}

// MemoryStore is the default process-scoped session table. State is cleared
// on restart, which is acceptable: tokens re-validate on their own and a
// restart simply forgets revocations.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) Activate(_ context.Context, subject string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[subject] = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, subject)
	return nil
}

func (s *MemoryStore) Active(_ context.Context, subject string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.sessions[subject]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		s.mu.Lock()
		delete(s.sessions, subject)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
