// Package sqlstore implements the persistence ports on top of sqlx, for
// SQLite (development, tests) and PostgreSQL (production).
package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultTimeout = 10 * time.Second
)

// Config captures the settings needed to open a SQL store.
type Config struct {
	Driver  string
	URL     string
	Timeout time.Duration
}

// Connect opens the pool and verifies connectivity with a ping. SQLite pools
// are limited to a single connection so writers never contend on the file.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dsn := cfg.URL
	switch cfg.Driver {
	case DriverSQLite:
		dsn = sqliteDSN(cfg.URL)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("sql connect: unsupported driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql ping: %w", err)
	}
	return db, nil
}

// sqliteDSN adds foreign key enforcement and a busy timeout unless the
// caller set them.
func sqliteDSN(raw string) string {
	base, query, _ := strings.Cut(raw, "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		params = url.Values{}
	}
	if params.Get("_foreign_keys") == "" {
		params.Set("_foreign_keys", "on")
	}
	if params.Get("_busy_timeout") == "" {
		params.Set("_busy_timeout", "5000")
	}
	if params.Get("_txlock") == "" {
		params.Set("_txlock", "immediate")
	}
	return base + "?" + params.Encode()
}
