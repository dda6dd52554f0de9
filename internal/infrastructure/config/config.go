package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL"`

	// Optional overrides of the profile defaults.
	CSRFEnabled *bool `env:"CSRF_ENABLED, noinit"`
	SQLEcho     *bool `env:"SQL_ECHO, noinit"`

	AdminRequireValid bool `env:"ADMIN_REQUIRE_VALID, default=false"`

	Session  SessionConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL, default=24h"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER,    default=sqlite3"`
	URL    string `env:"DATABASE_URL, default=file:toolbox.sqlite"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=toolbox"`
}

type RedisConfig struct {
	// Addr left empty keeps sessions in process memory.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Profile holds the switches that differ between environments.
type Profile struct {
	Debug         bool
	SQLEcho       bool
	CSRF          bool
	PrettyLogs    bool
	SecureCookies bool
	LogLevel      string
}

var profiles = map[string]Profile{
	EnvDevelopment: {Debug: true, SQLEcho: true, CSRF: true, PrettyLogs: true, LogLevel: "debug"},
	EnvTesting:     {Debug: true, SQLEcho: false, CSRF: false, PrettyLogs: true, LogLevel: "info"},
	EnvProduction:  {Debug: false, SQLEcho: false, CSRF: true, SecureCookies: true, LogLevel: "info"},
}

// Profile resolves the environment profile and applies explicit overrides.
func (c *Config) Profile() Profile {
	p := profiles[c.Env]
	if c.CSRFEnabled != nil {
		p.CSRF = *c.CSRFEnabled
	}
	if c.SQLEcho != nil {
		p.SQLEcho = *c.SQLEcho
	}
	if c.LogLevel != "" {
		p.LogLevel = c.LogLevel
	}
	return p
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	if _, ok := profiles[c.Env]; !ok {
		return fmt.Errorf("config: unknown ENV %q (want development, testing or production)", c.Env)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.Env == EnvProduction {
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("config: SESSION_SECRET must be at least 32 bytes in production")
		}
		if c.Database.Driver == DriverMemory {
			return fmt.Errorf("config: DB_DRIVER=memory is not allowed in production")
		}
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if cfg.Session.Secret == "" && cfg.Env != EnvProduction {
		cfg.Session.Secret = "insecure-development-session-secret"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
