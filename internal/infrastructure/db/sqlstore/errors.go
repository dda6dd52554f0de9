package sqlstore

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

const pqUniqueViolation = "23505"

// translate maps driver errors onto the domain taxonomy. Other errors are
// returned unchanged.
func translate(entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return &domain.ConflictError{Entity: entity, Field: constraintField(pqErr.Constraint)}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &domain.ConflictError{Entity: entity, Field: sqliteField(liteErr.Error())}
	}
	return err
}

// constraintField extracts "email" from "users_email_key".
func constraintField(name string) string {
	name = strings.TrimSuffix(name, "_key")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// sqliteField extracts "email" from "UNIQUE constraint failed: users.email".
func sqliteField(msg string) string {
	if i := strings.LastIndex(msg, "."); i >= 0 {
		return msg[i+1:]
	}
	return ""
}
