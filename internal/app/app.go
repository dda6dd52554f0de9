// Package app builds the application context: every store, service and the
// HTTP router are constructed once here and handed to the commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/api"
	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
	"github.com/opsdesk/toolbox-admin/internal/core/service"
	"github.com/opsdesk/toolbox-admin/internal/infrastructure/config"
	"github.com/opsdesk/toolbox-admin/internal/infrastructure/db/memory"
	"github.com/opsdesk/toolbox-admin/internal/infrastructure/db/mongo"
	"github.com/opsdesk/toolbox-admin/internal/infrastructure/db/redis"
	"github.com/opsdesk/toolbox-admin/internal/infrastructure/db/sqlstore"
	"github.com/opsdesk/toolbox-admin/pkg/logger"
)

type App struct {
	Config  *config.Config
	Profile config.Profile
	Log     zerolog.Logger

	Store        ports.Store
	SessionStore ports.SessionStore
	Sessions     *session.Manager

	Auth   *service.AuthService
	Groups *service.GroupService
	Roles  *service.RoleService
	Tools  *service.ToolService
	Users  *service.UserService

	closers []func(context.Context) error
}

// New opens the configured backends and wires the services. SQL schemas are
// migrated and Mongo indexes ensured before New returns. Callers must Close
// the App.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Profile: cfg.Profile(), Log: log}

	store, err := OpenStore(ctx, cfg, logger.For("store"))
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if err := a.openSessions(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	a.Auth = service.NewAuthService(store, logger.For("auth"))
	a.Groups = service.NewGroupService(store, logger.For("groups"))
	a.Roles = service.NewRoleService(store, logger.For("roles"))
	a.Tools = service.NewToolService(store, logger.For("tools"))
	a.Users = service.NewUserService(store, logger.For("users"))

	a.Sessions = session.NewManager(a.SessionStore, session.Options{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: a.Profile.SecureCookies,
	}, logger.For("session"))

	return a, nil
}

// Router returns the HTTP handler serving every route.
func (a *App) Router() *echo.Echo {
	return api.NewRouter(api.Dependencies{
		Auth:              a.Auth,
		Groups:            a.Groups,
		Roles:             a.Roles,
		Tools:             a.Tools,
		Users:             a.Users,
		Sessions:          a.Sessions,
		Store:             a.Store,
		SessionStore:      a.SessionStore,
		Log:               logger.For("http"),
		Debug:             a.Profile.Debug,
		CSRF:              a.Profile.CSRF,
		SecureCookies:     a.Profile.SecureCookies,
		AdminRequireValid: a.Config.AdminRequireValid,
	})
}

// Close releases the backends in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openSessions(ctx context.Context) error {
	if a.Config.Redis.Addr == "" {
		a.Log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
		a.SessionStore = memory.NewSessionStore()
		return nil
	}

	rs, err := redis.Open(ctx, redis.Config{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return err
	}
	a.SessionStore = rs
	a.closers = append(a.closers, func(context.Context) error { return rs.Close() })
	a.Log.Info().Str("addr", a.Config.Redis.Addr).Int("db", a.Config.Redis.DB).Msg("redis session store connected")
	return nil
}

// OpenStore opens the persistence backend selected by DB_DRIVER and brings
// its schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := sqlstore.Connect(ctx, sqlstore.Config{Driver: cfg.Database.Driver, URL: cfg.Database.URL})
		if err != nil {
			return nil, err
		}
		if err := sqlstore.Migrate(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("sql store ready")
		return sqlstore.NewStore(db, sqlstore.WithLogger(log), sqlstore.WithEcho(cfg.Profile().SQLEcho)), nil

	case config.DriverMongo:
		store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return store, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
}
