package ports

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record bound to a browser by cookie. UserID is
// zero for anonymous sessions that only carry flash messages.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Flashes   []string  `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether the session is bound to a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// SessionStore persists sessions until they expire.
type SessionStore interface {
	// Get returns ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	// Save creates or replaces s; it expires at s.ExpiresAt.
	Save(ctx context.Context, s *Session) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
