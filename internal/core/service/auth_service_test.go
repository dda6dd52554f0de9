package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

func TestAuthService_SignUp_Success(t *testing.T) {
	svc := NewAuthService(newStore(), nop())

	user, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Email: " A@X.com ", Name: "alice", FirstName: "Alice", LastName: "Liddell", Password: "pw1",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.IsAdmin {
		t.Fatalf("new accounts must not be admins")
	}
	if user.PasswordHash == "pw1" || !user.VerifyPassword("pw1") {
		t.Fatalf("expected password to be hashed")
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc := NewAuthService(newStore(), nop())

	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "", Name: "bob", Password: ""})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["email"]; !ok {
		t.Errorf("expected email field error")
	}
	if _, ok := ve.Fields["password"]; !ok {
		t.Errorf("expected password field error")
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc := NewAuthService(newStore(), nop())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, ports.SignUpInput{Email: "bob@x.com", Name: "bob", Password: "pw"}); err != nil {
		t.Fatalf("first sign up: %v", err)
	}

	_, err := svc.SignUp(ctx, ports.SignUpInput{Email: "bob@x.com", Name: "bobby", Password: "pw"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}

	_, err = svc.SignUp(ctx, ports.SignUpInput{Email: "other@x.com", Name: "bob", Password: "pw"})
	if !errors.As(err, &conflict) || conflict.Field != "name" {
		t.Fatalf("expected name conflict, got %v", err)
	}
}

func TestAuthService_SignUpThenSignIn(t *testing.T) {
	svc := NewAuthService(newStore(), nop())
	ctx := context.Background()

	created, err := svc.SignUp(ctx, ports.SignUpInput{Email: "a@x.com", Name: "a", Password: "pw1"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	user, err := svc.SignIn(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("signed in as %d, want %d", user.ID, created.ID)
	}
	if user.IsAdmin {
		t.Fatalf("expected non-admin user")
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	svc := NewAuthService(newStore(), nop())
	ctx := context.Background()

	_, _ = svc.SignUp(ctx, ports.SignUpInput{Email: "a@x.com", Name: "a", Password: "pw1"})
	if _, err := svc.SignIn(ctx, "a@x.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newStore(), nop())

	if _, err := svc.SignIn(context.Background(), "ghost@x.com", "pw"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_Blocked(t *testing.T) {
	store := newStore()
	svc := NewAuthService(store, nop())
	ctx := context.Background()

	u := seedUser(t, store, "blocked@x.com", "blocked", false)
	u.IsBlocked = true
	if err := store.Users().Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.SignIn(ctx, "blocked@x.com", "blocked"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_EmptyInput(t *testing.T) {
	svc := NewAuthService(newStore(), nop())

	if _, err := svc.SignIn(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	store := newStore()
	svc := NewAuthService(store, nop())
	u := seedUser(t, store, "a@x.com", "a", false)

	got, err := svc.CurrentUser(context.Background(), u.ID)
	if err != nil || got.Email != "a@x.com" {
		t.Fatalf("unexpected result %+v, %v", got, err)
	}

	if _, err := svc.CurrentUser(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuthService_SignUp_PasswordTooLong(t *testing.T) {
	svc := NewAuthService(newStore(), nop())

	_, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Email:    "long@example.com",
		Name:     "long",
		Password: strings.Repeat("x", domain.MaxPasswordBytes+1),
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve.Fields["password"]; !ok {
		t.Fatalf("expected password field error, got %v", ve.Fields)
	}
}

func TestNewAuthService_DummyHashFallback(t *testing.T) {
	prev := domain.PasswordCost
	domain.PasswordCost = bcrypt.MaxCost + 1
	t.Cleanup(func() { domain.PasswordCost = prev })

	var buf bytes.Buffer
	svc := NewAuthService(newStore(), zerolog.New(&buf))

	if !strings.Contains(buf.String(), "dummy password hash failed") {
		t.Fatalf("expected the failure to be logged, got %q", buf.String())
	}
	if svc.dummy.PasswordHash == "" {
		t.Fatal("expected a fallback dummy hash")
	}
	if !svc.dummy.VerifyPassword(dummyPassword) {
		t.Fatal("fallback hash must be a real bcrypt hash")
	}
}
