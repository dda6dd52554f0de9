package domain

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for new password hashes.
var PasswordCost = bcrypt.DefaultCost

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// User models an account that can sign in. Admins (IsAdmin) manage every
// entity through the admin area.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	GroupID      *int64    `json:"group_id,omitempty"`
	RoleID       *int64    `json:"role_id,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	IsValid      bool      `json:"is_valid"`
	IsBlocked    bool      `json:"is_blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
// The plaintext is never kept. Passwords bcrypt cannot hash are reported as
// a *ValidationError on the "password" field.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}
	if len(password) > MaxPasswordBytes {
		return passwordTooLong()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return passwordTooLong()
		}
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// FullName joins first and last name, falling back to the account name.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Name
	}
}

func passwordTooLong() error {
	return NewValidationError("password", fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
}
