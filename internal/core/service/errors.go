package service

import (
	"errors"
	"strings"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// storeError passes domain errors through unchanged and wraps anything else
// coming out of a (rolled back) transaction in a PersistenceError.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrForbidden):
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// required returns a ValidationError listing every empty field, or nil.
// fields alternates name, value.
func required(fields ...string) error {
	var ve *domain.ValidationError
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) != "" {
			continue
		}
		if ve == nil {
			ve = &domain.ValidationError{Fields: map[string]string{}}
		}
		ve.Fields[fields[i]] = fields[i] + " is required"
	}
	if ve == nil {
		return nil
	}
	return ve
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
