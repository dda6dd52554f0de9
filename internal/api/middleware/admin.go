package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// RequireAdmin rejects requests whose user is not an admin. With
// requireValid the account must also be marked valid. It must run after
// RequireSession.
func RequireAdmin(requireValid bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := session.User(c)
			if u == nil || !u.IsAdmin || (requireValid && !u.IsValid) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
