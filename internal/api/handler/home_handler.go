package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

// HomeHandler serves the welcome page and the two dashboards.
type HomeHandler struct {
	base
	authService ports.AuthService
	groups      ports.GroupService
	roles       ports.RoleService
	tools       ports.ToolService
	users       ports.UserService
}

func NewHomeHandler(
	authService ports.AuthService,
	groups ports.GroupService,
	roles ports.RoleService,
	tools ports.ToolService,
	users ports.UserService,
	sessions *session.Manager,
	log zerolog.Logger,
) *HomeHandler {
	return &HomeHandler{
		base:        base{sessions: sessions, log: log},
		authService: authService,
		groups:      groups,
		roles:       roles,
		tools:       tools,
		users:       users,
	}
}

// Welcome serves GET /. It needs no session but greets signed-in users.
func (h *HomeHandler) Welcome(c echo.Context) error {
	if sess := session.Current(c); sess.Authenticated() {
		if u, err := h.authService.CurrentUser(c.Request().Context(), sess.UserID); err == nil {
			session.SetUser(c, u)
		}
	}
	return render(c, http.StatusOK, view.Welcome(h.page(c, "Welcome")))
}

// Home serves GET /home.
func (h *HomeHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, view.Home(h.page(c, "Home")))
}

// AdminHome serves GET /admin/home.
func (h *HomeHandler) AdminHome(c echo.Context) error {
	ctx := c.Request().Context()

	groups, err := h.groups.List(ctx)
	if err != nil {
		return err
	}
	roles, err := h.roles.List(ctx)
	if err != nil {
		return err
	}
	tools, err := h.tools.List(ctx)
	if err != nil {
		return err
	}
	users, err := h.users.List(ctx)
	if err != nil {
		return err
	}

	counts := map[string]int{
		"Groups": len(groups),
		"Roles":  len(roles),
		"Tools":  len(tools),
		"Users":  len(users),
	}
	return render(c, http.StatusOK, view.AdminHome(h.page(c, "Admin"), counts))
}
