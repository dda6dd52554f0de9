package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

// UserService implements the admin operations on accounts.
//
// Admin accounts are protected: they cannot be deleted, another admin's
// group and role cannot be reassigned, and an admin cannot revoke their own
// admin flag.
type UserService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewUserService(store ports.Store, log zerolog.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.Users().List(ctx)
	return users, storeError("list users", err)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	u := &domain.User{
		Email:     normalizeEmail(in.Email),
		Name:      strings.TrimSpace(in.Name),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsAdmin:   in.IsAdmin,
		IsValid:   in.IsAdmin,
	}
	if err := required("email", u.Email, "name", u.Name, "password", in.Password); err != nil {
		return nil, err
	}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := ensureUniqueUser(ctx, tx.Users(), u); err != nil {
			return err
		}
		return tx.Users().Insert(ctx, u)
	})
	if err != nil {
		return nil, storeError("add user", err)
	}

	s.log.Info().Int64("user_id", u.ID).Bool("is_admin", u.IsAdmin).Msg("user added")
	return u, nil
}

func (s *UserService) Update(ctx context.Context, actor *domain.User, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	email, name := normalizeEmail(in.Email), strings.TrimSpace(in.Name)
	if err := required("email", email, "name", name); err != nil {
		return nil, err
	}

	var u *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		if u, err = tx.Users().FindByID(ctx, id); err != nil {
			return err
		}
		if actor != nil && actor.ID == u.ID && u.IsAdmin && !in.IsAdmin {
			return domain.ErrForbidden
		}

		u.Email = email
		u.Name = name
		u.FirstName = strings.TrimSpace(in.FirstName)
		u.LastName = strings.TrimSpace(in.LastName)
		u.IsAdmin = in.IsAdmin
		u.IsValid = in.IsValid
		u.IsBlocked = in.IsBlocked

		if err := ensureUniqueUser(ctx, tx.Users(), u); err != nil {
			return err
		}
		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		return nil, storeError("edit user", err)
	}

	s.log.Info().Int64("user_id", u.ID).Int64("actor_id", actorID(actor)).Msg("user edited")
	return u, nil
}

// Delete refuses to remove admin accounts, the actor's own included.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if u.IsAdmin {
			return domain.ErrForbidden
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			s.log.Warn().Int64("user_id", id).Int64("actor_id", actorID(actor)).Msg("refused to delete admin account")
		}
		return storeError("delete user", err)
	}

	s.log.Info().Int64("user_id", id).Int64("actor_id", actorID(actor)).Msg("user deleted")
	return nil
}

// Assign sets the group and role of a user. Referenced entities must exist.
func (s *UserService) Assign(ctx context.Context, actor *domain.User, id int64, in ports.AssignInput) (*domain.User, error) {
	var u *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		if u, err = tx.Users().FindByID(ctx, id); err != nil {
			return err
		}
		if u.IsAdmin && (actor == nil || actor.ID != u.ID) {
			return domain.ErrForbidden
		}

		if in.GroupID != nil {
			if _, err := tx.Groups().FindByID(ctx, *in.GroupID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.NewValidationError("group_id", "selected group does not exist")
				}
				return err
			}
		}
		if in.RoleID != nil {
			if _, err := tx.Roles().FindByID(ctx, *in.RoleID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.NewValidationError("role_id", "selected role does not exist")
				}
				return err
			}
		}

		u.GroupID, u.RoleID = in.GroupID, in.RoleID
		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		return nil, storeError("assign user", err)
	}

	s.log.Info().Int64("user_id", u.ID).Int64("actor_id", actorID(actor)).Msg("user assigned")
	return u, nil
}

func actorID(actor *domain.User) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
