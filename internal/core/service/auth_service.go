package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

// AuthService implements sign-up, sign-in and session user lookup.
type AuthService struct {
	store ports.Store
	log   zerolog.Logger

	// dummy is compared against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummy domain.User
}

const dummyPassword = "not-a-real-password"

func NewAuthService(store ports.Store, log zerolog.Logger) *AuthService {
	s := &AuthService{store: store, log: log}
	if err := s.dummy.SetPassword(dummyPassword); err != nil {
		log.Error().Err(err).Msg("dummy password hash failed, using the default bcrypt cost")
		hash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("dummy password hash failed")
		}
		s.dummy.PasswordHash = string(hash)
	}
	return s
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := required("email", in.Email, "name", in.Name, "password", in.Password); err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:     in.Email,
		Name:      in.Name,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := ensureUniqueUser(ctx, tx.Users(), user); err != nil {
			return err
		}
		return tx.Users().Insert(ctx, user)
	})
	if err != nil {
		return nil, storeError("sign up", err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// SignIn returns ErrInvalidCredentials for unknown emails, wrong passwords
// and blocked accounts alike.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.dummy.VerifyPassword(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeError("sign in", err)
	}

	if !user.VerifyPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsBlocked {
		s.log.Warn().Int64("user_id", user.ID).Msg("blocked user attempted sign in")
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, storeError("load user", err)
	}
	return user, nil
}

// ensureUniqueUser reports a ConflictError when another account already uses
// u's email or name. The unique indexes still guard concurrent inserts.
func ensureUniqueUser(ctx context.Context, users ports.UserRepository, u *domain.User) error {
	if existing, err := users.FindByEmail(ctx, u.Email); err == nil {
		if existing.ID != u.ID {
			return &domain.ConflictError{Entity: domain.EntityUser, Field: "email"}
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if existing, err := users.FindByName(ctx, u.Name); err == nil {
		if existing.ID != u.ID {
			return &domain.ConflictError{Entity: domain.EntityUser, Field: "name"}
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
