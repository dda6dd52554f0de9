package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// SignInPath is where unauthenticated requests are sent.
const SignInPath = "/signin"

// UserLoader resolves the account bound to a session.
type UserLoader interface {
	CurrentUser(ctx context.Context, id int64) (*domain.User, error)
}

// Session loads the session referenced by the request cookie, if any.
func Session(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.Load(c)
			return next(c)
		}
	}
}

// RequireSession redirects to the sign-in page unless the request carries an
// authenticated session. The user is reloaded on every request so that
// changes to the account apply immediately: sessions of deleted or blocked
// accounts are destroyed.
func RequireSession(m *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := session.Current(c)
			if !sess.Authenticated() {
				return redirectToSignIn(c)
			}

			u, err := users.CurrentUser(c.Request().Context(), sess.UserID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if err != nil || u.IsBlocked {
				if err := m.Destroy(c); err != nil {
					return err
				}
				return redirectToSignIn(c)
			}

			session.SetUser(c, u)
			return next(c)
		}
	}
}

func redirectToSignIn(c echo.Context) error {
	q := url.Values{"next": {c.Request().URL.RequestURI()}}
	return c.Redirect(http.StatusFound, SignInPath+"?"+q.Encode())
}
