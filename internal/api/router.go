package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api/handler"
	"github.com/opsdesk/toolbox-admin/internal/api/middleware"
	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/api/view"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

const metricsSubsystem = "toolbox"

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Auth   ports.AuthService
	Groups ports.GroupService
	Roles  ports.RoleService
	Tools  ports.ToolService
	Users  ports.UserService

	Sessions     *session.Manager
	Store        handler.Pinger
	SessionStore handler.Pinger

	Log zerolog.Logger

	Debug             bool
	CSRF              bool
	SecureCookies     bool
	AdminRequireValid bool

	// Registry receives the HTTP metrics and serves /metrics. The default
	// Prometheus registry is used when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = d.Debug
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
		Skipper:    skipProbes,
	}))
	if d.CSRF {
		e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			Skipper:        skipProbes,
			TokenLookup:    "form:" + view.CSRFField,
			ContextKey:     handler.CSRFContextKey,
			CookieName:     "toolbox_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   d.SecureCookies,
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}
	e.Use(middleware.Session(d.Sessions))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions, d.Log)
	homeHandler := handler.NewHomeHandler(d.Auth, d.Groups, d.Roles, d.Tools, d.Users, d.Sessions, d.Log)
	groupHandler := handler.NewGroupHandler(d.Groups, d.Sessions, d.Log)
	roleHandler := handler.NewRoleHandler(d.Roles, d.Sessions, d.Log)
	toolHandler := handler.NewToolHandler(d.Tools, d.Sessions, d.Log)
	userHandler := handler.NewUserHandler(d.Users, d.Groups, d.Roles, d.Sessions, d.Log)

	requireSession := middleware.RequireSession(d.Sessions, d.Auth)
	requireAdmin := middleware.RequireAdmin(d.AdminRequireValid)

	// --- Public routes ---
	e.GET("/", homeHandler.Welcome)
	e.Match(formMethods, "/signup", authHandler.SignUp)
	e.Match(formMethods, "/signin", authHandler.SignIn)

	// --- Session routes ---
	e.GET("/home", homeHandler.Home, requireSession)
	e.Match(formMethods, "/signout", authHandler.SignOut, requireSession)

	// --- Admin routes ---
	admin := e.Group("/admin", requireSession, requireAdmin)
	admin.GET("/home", homeHandler.AdminHome)

	crud := func(prefix string, list, add, edit, del echo.HandlerFunc) *echo.Group {
		g := admin.Group(prefix)
		g.GET("", list)
		g.Match(formMethods, "/add", add)
		g.Match(formMethods, "/edit/:id", edit)
		g.Match(formMethods, "/delete/:id", del)
		return g
	}
	crud("/groups", groupHandler.List, groupHandler.Add, groupHandler.Edit, groupHandler.Delete)
	crud("/roles", roleHandler.List, roleHandler.Add, roleHandler.Edit, roleHandler.Delete)
	crud("/tools", toolHandler.List, toolHandler.Add, toolHandler.Edit, toolHandler.Delete)
	users := crud("/users", userHandler.List, userHandler.Add, userHandler.Edit, userHandler.Delete)
	users.Match(formMethods, "/assign/:id", userHandler.Assign)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Store, d.SessionStore)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	return e
}

var formMethods = []string{http.MethodGet, http.MethodPost}

func skipProbes(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") || p == "/metrics"
}
