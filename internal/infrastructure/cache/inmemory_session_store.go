package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tradepost/backend/internal/domain/shared"
	"github.com/tradepost/backend/internal/domain/wizard"
)

// sessionEntry is a stored session with its expiry
type sessionEntry struct {
	session   wizard.Session
	expiresAt time.Time
}

// InMemorySessionStore implements wizard.SessionStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[string]sessionEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates a new in-memory session store.
// It starts a background goroutine that drops expired sessions; call Close to stop it.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		entries:  make(map[string]sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(cleanupInterval(ttl))

	return store
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > time.Minute {
		return time.Minute
	}
	return ttl
}

// Get returns a copy of the session for externalID, or shared.ErrNotFound
func (s *InMemorySessionStore) Get(ctx context.Context, externalID string) (*wizard.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[externalID]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, shared.ErrNotFound
	}
	session := e.session
	return &session, nil
}

// Put stores a copy of the session and restarts its TTL
func (s *InMemorySessionStore) Put(ctx context.Context, session *wizard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[session.ExternalID] = sessionEntry{
		session:   *session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes the session for externalID
func (s *InMemorySessionStore) Delete(ctx context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, externalID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemorySessionStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired sessions
func (s *InMemorySessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Size returns the number of stored sessions, expired ones included until cleanup
func (s *InMemorySessionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemorySessionStore implements SessionStore
var _ wizard.SessionStore = (*InMemorySessionStore)(nil)
