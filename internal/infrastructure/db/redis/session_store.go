package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps sessions as JSON values that expire with the session.
// Key format: session:<id>
type SessionStore struct {
	client redis.Cmdable
	closer io.Closer
	now    func() time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*ports.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess ports.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if !sess.ExpiresAt.After(s.now()) {
		return nil, ports.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *ports.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client when the store was created by Open.
func (s *SessionStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *SessionStore) key(id string) string {
	return sessionKeyPrefix + id
}
