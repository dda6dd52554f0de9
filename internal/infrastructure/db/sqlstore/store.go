package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

// Store is a ports.Store backed by a sqlx pool. Inside WithinTx the same
// type wraps the open transaction.
type Store struct {
	db   *sqlx.DB
	ext  sqlx.ExtContext
	tx   *sqlx.Tx
	log  zerolog.Logger
	echo bool
}

var _ ports.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for statement tracing and rollback errors.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithEcho logs every statement at debug level.
func WithEcho(echo bool) Option {
	return func(s *Store) { s.echo = echo }
}

func NewStore(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, ext: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Users() ports.UserRepository   { return &userRepo{s: s} }
func (s *Store) Groups() ports.GroupRepository {
	return &groupRepo{namedRepo{s: s, table: `"groups"`, entity: domain.EntityGroup}}
}

func (s *Store) Roles() ports.RoleRepository {
	return &roleRepo{namedRepo{s: s, table: "roles", entity: domain.EntityRole}}
}

func (s *Store) Tools() ports.ToolRepository   { return &toolRepo{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) (err error) {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txStore := &Store{db: s.db, ext: tx, tx: tx, log: s.log, echo: s.echo}
	if err := fn(ctx, txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

func (s *Store) trace(query string) string {
	query = s.ext.Rebind(query)
	if s.echo {
		s.log.Debug().Str("sql", query).Bool("tx", s.tx != nil).Msg("exec")
	}
	return query
}

func (s *Store) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, s.ext, dest, s.trace(query), args...)
}

func (s *Store) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, s.ext, dest, s.trace(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.ext.ExecContext(ctx, s.trace(query), args...)
}

// insert runs an INSERT ... RETURNING id statement.
func (s *Store) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := s.ext.QueryRowxContext(ctx, s.trace(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execOne runs a single-row UPDATE or DELETE and reports whether it matched.
func (s *Store) execOne(ctx context.Context, query string, args ...interface{}) (bool, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
