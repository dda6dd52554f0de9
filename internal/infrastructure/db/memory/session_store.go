package memory

import (
	"context"
	"sync"
	"time"

	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

// SessionStore keeps sessions in a map. Expired entries are dropped lazily
// on lookup.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]ports.Session
	now      func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]ports.Session), now: time.Now}
}

func (s *SessionStore) Get(_ context.Context, id string) (*ports.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ports.ErrSessionNotFound
	}
	sess.Flashes = append([]string(nil), sess.Flashes...)
	return &sess, nil
}

func (s *SessionStore) Save(_ context.Context, sess *ports.Session) error {
	stored := *sess
	stored.Flashes = append([]string(nil), sess.Flashes...)

	s.mu.Lock()
	s.sessions[sess.ID] = stored
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }

// Len reports the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
