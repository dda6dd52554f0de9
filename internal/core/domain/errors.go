package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	EntityUser  = "user"
	EntityGroup = "group"
	EntityRole  = "role"
	EntityTool  = "tool"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports a unique constraint violation on Field.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %s", e.Entity, ErrConflict)
	}
	return fmt.Sprintf("%s with this %s %s", e.Entity, e.Field, ErrConflict)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError reports a missing row.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d %s", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a store failure that was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
