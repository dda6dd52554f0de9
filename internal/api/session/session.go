// Package session binds browsers to server-side session records through a
// signed cookie and carries one-shot flash messages between requests.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const (
	CookieName = "toolbox_session"

	sessionKey = "session"
	userKey    = "user"
	idBytes    = 32
)

var errInvalidToken = errors.New("invalid session token")

// Options configures a Manager.
type Options struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Manager issues and resolves session cookies. The cookie holds an HS256
// token whose jti is the id of the record kept in the SessionStore.
type Manager struct {
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

func NewManager(store ports.SessionStore, opts Options, log zerolog.Logger) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    ttl,
		secure: opts.Secure,
		log:    log,
		now:    time.Now,
	}
}

// Load resolves the session referenced by the request cookie and attaches it
// to c. Missing, tampered and expired cookies yield nil.
func (m *Manager) Load(c echo.Context) *ports.Session {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	id, err := m.parse(cookie.Value)
	if err != nil {
		m.log.Debug().Err(err).Msg("ignoring session cookie")
		return nil
	}

	sess, err := m.store.Get(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, ports.ErrSessionNotFound) {
			m.log.Error().Err(err).Msg("session lookup failed")
		}
		return nil
	}

	c.Set(sessionKey, sess)
	return sess
}

// Start binds a fresh session to userID. Any previous session is destroyed;
// its pending flashes carry over.
func (m *Manager) Start(c echo.Context, userID int64) (*ports.Session, error) {
	ctx := c.Request().Context()

	var flashes []string
	if prev := Current(c); prev != nil {
		flashes = prev.Flashes
		if err := m.store.Delete(ctx, prev.ID); err != nil {
			return nil, err
		}
	}

	sess, err := m.newSession(userID)
	if err != nil {
		return nil, err
	}
	sess.Flashes = flashes

	if err := m.save(c, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Destroy removes the server-side record and expires the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	if sess := Current(c); sess != nil {
		if err := m.store.Delete(c.Request().Context(), sess.ID); err != nil {
			return err
		}
	}
	c.Set(sessionKey, nil)
	c.Set(userKey, nil)
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// AddFlash queues msg for the next rendered page, opening an anonymous
// session when the request has none.
func (m *Manager) AddFlash(c echo.Context, msg string) error {
	sess := Current(c)
	if sess == nil {
		var err error
		if sess, err = m.newSession(0); err != nil {
			return err
		}
	}
	sess.Flashes = append(sess.Flashes, msg)
	return m.save(c, sess)
}

// PopFlashes returns and clears the pending flash messages.
func (m *Manager) PopFlashes(c echo.Context) []string {
	sess := Current(c)
	if sess == nil || len(sess.Flashes) == 0 {
		return nil
	}

	flashes := sess.Flashes
	sess.Flashes = nil
	if err := m.store.Save(c.Request().Context(), sess); err != nil {
		m.log.Error().Err(err).Msg("clearing flashes failed")
	}
	return flashes
}

func (m *Manager) Ping(c echo.Context) error {
	return m.store.Ping(c.Request().Context())
}

func (m *Manager) newSession(userID int64) (*ports.Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := m.now().UTC()
	return &ports.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}, nil
}

func (m *Manager) save(c echo.Context, sess *ports.Session) error {
	if err := m.store.Save(c.Request().Context(), sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	token, err := m.sign(sess)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(sessionKey, sess)
	return nil
}

func (m *Manager) sign(sess *ports.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid || claims.ID == "" {
		return "", errInvalidToken
	}
	return claims.ID, nil
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Current returns the session attached to c by Load, Start or AddFlash.
func Current(c echo.Context) *ports.Session {
	sess, _ := c.Get(sessionKey).(*ports.Session)
	return sess
}

// SetUser records the authenticated user for the rest of the request.
func SetUser(c echo.Context, u *domain.User) {
	c.Set(userKey, u)
}

// User returns the authenticated user, or nil.
func User(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}
