// Package session keeps admission sessions in process memory.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumina-events/invitation-api/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu      sync.Mutex
	session *domain.AdmissionSession
}

// Store maps session IDs to admission sessions. Operations on one session
// are serialized; different sessions never block each other.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create opens a new unverified session.
func (s *Store) Create() domain.AdmissionSession {
	sess := domain.NewAdmissionSession(uuid.NewString(), s.now(), s.ttl)

	s.mu.Lock()
	s.entries[sess.ID] = &entry{session: sess}
	s.mu.Unlock()

	return *sess
}

// With runs fn while holding the session's lock. Expired sessions are
// removed and reported as missing.
func (s *Store) With(id string, fn func(*domain.AdmissionSession) error) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Expired(s.now()) {
		s.remove(id)
		return ErrSessionNotFound
	}

	return fn(e.session)
}

func (s *Store) Get(id string) (domain.AdmissionSession, error) {
	var snapshot domain.AdmissionSession
	err := s.With(id, func(sess *domain.AdmissionSession) error {
		snapshot = *sess
		return nil
	})

	return snapshot, err
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Clear drops every session.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Sweep deletes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.session.Expired(now) {
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
	}

	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				zap.L().Debug("expired admission sessions removed", zap.Int("count", n))
			}
		}
	}
}
