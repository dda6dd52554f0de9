package sqlstore

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Migrate applies every pending migration for the pool's driver.
func Migrate(db *sqlx.DB, log zerolog.Logger) error {
	dir := "migrations/sqlite"
	if db.DriverName() == DriverPostgres {
		dir = "migrations/postgres"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.SetDialect(db.DriverName()); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db.DB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(format, v...)
}
