package domain

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

func TestUser_SetPassword_StoresHash(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("cat"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "cat" {
		t.Fatalf("expected hashed password, got %q", u.PasswordHash)
	}
}

func TestUser_SetPassword_Empty(t *testing.T) {
	u := &User{}
	if err := u.SetPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestUser_SetPassword_TooLong(t *testing.T) {
	u := &User{}
	err := u.SetPassword(strings.Repeat("a", MaxPasswordBytes+1))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["password"] != "password must be at most 72 bytes" {
		t.Fatalf("unexpected message: %q", ve.Fields["password"])
	}
	if u.PasswordHash != "" {
		t.Fatal("hash must not be set")
	}

	// 24 three-byte runes fill the limit exactly.
	if err := u.SetPassword(strings.Repeat("€", 24)); err != nil {
		t.Fatalf("72-byte password should be accepted: %v", err)
	}
	if err := u.SetPassword(strings.Repeat("€", 25)); !errors.Is(err, ErrValidation) {
		t.Fatalf("75-byte password should be rejected, got %v", err)
	}
}

func TestUser_VerifyPassword(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("cat"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	cases := []struct {
		input string
		want  bool
	}{
		{"cat", true},
		{"dog", false},
		{"Cat", false},
		{"cat ", false},
		{"", false},
		{u.PasswordHash, false},
	}
	for _, tc := range cases {
		if got := u.VerifyPassword(tc.input); got != tc.want {
			t.Errorf("VerifyPassword(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestUser_VerifyPassword_NoHash(t *testing.T) {
	u := &User{}
	if u.VerifyPassword("") {
		t.Fatalf("user without hash must never verify")
	}
}

func TestUser_FullName(t *testing.T) {
	if got := (&User{Name: "jdoe", FirstName: "John", LastName: "Doe"}).FullName(); got != "John Doe" {
		t.Fatalf("unexpected full name %q", got)
	}
	if got := (&User{Name: "jdoe"}).FullName(); got != "jdoe" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestErrors_Is(t *testing.T) {
	if !errors.Is(&ConflictError{Entity: EntityGroup, Field: "name"}, ErrConflict) {
		t.Errorf("ConflictError should match ErrConflict")
	}
	if !errors.Is(&NotFoundError{Entity: EntityTool, ID: 3}, ErrNotFound) {
		t.Errorf("NotFoundError should match ErrNotFound")
	}
	if !errors.Is(NewValidationError("name", "name is required"), ErrValidation) {
		t.Errorf("ValidationError should match ErrValidation")
	}
	cause := errors.New("disk full")
	if !errors.Is(&PersistenceError{Op: "add group", Err: cause}, cause) {
		t.Errorf("PersistenceError should unwrap to its cause")
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"name":  "name is required",
		"email": "email must be a valid email",
	}}
	if got := err.Error(); got != "email must be a valid email; name is required" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestConflictError_Message(t *testing.T) {
	err := &ConflictError{Entity: EntityGroup, Field: "name"}
	if got := err.Error(); got != "group with this name already exists" {
		t.Fatalf("unexpected message %q", got)
	}
}
