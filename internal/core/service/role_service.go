package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

type RoleService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewRoleService(store ports.Store, log zerolog.Logger) *RoleService {
	return &RoleService{store: store, log: log}
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.store.Roles().List(ctx)
	return roles, storeError("list roles", err)
}

func (s *RoleService) Get(ctx context.Context, id int64) (*domain.Role, error) {
	r, err := s.store.Roles().FindByID(ctx, id)
	if err != nil {
		return nil, storeError("get role", err)
	}
	return r, nil
}

func (s *RoleService) Create(ctx context.Context, in ports.RoleInput) (*domain.Role, error) {
	r := &domain.Role{Name: strings.TrimSpace(in.Name), Description: strings.TrimSpace(in.Description)}
	if err := required("name", r.Name, "description", r.Description); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		return tx.Roles().Insert(ctx, r)
	})
	if err != nil {
		return nil, storeError("add role", err)
	}

	s.log.Info().Int64("role_id", r.ID).Str("name", r.Name).Msg("role added")
	return r, nil
}

func (s *RoleService) Update(ctx context.Context, id int64, in ports.RoleInput) (*domain.Role, error) {
	name, desc := strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)
	if err := required("name", name, "description", desc); err != nil {
		return nil, err
	}

	var r *domain.Role
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		if r, err = tx.Roles().FindByID(ctx, id); err != nil {
			return err
		}
		r.Name, r.Description = name, desc
		return tx.Roles().Update(ctx, r)
	})
	if err != nil {
		return nil, storeError("edit role", err)
	}

	s.log.Info().Int64("role_id", r.ID).Msg("role edited")
	return r, nil
}

// Delete removes the role. Holders are kept and their role is cleared in
// the same transaction.
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if _, err := tx.Roles().FindByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Users().ClearRole(ctx, id); err != nil {
			return err
		}
		return tx.Roles().Delete(ctx, id)
	})
	if err != nil {
		return storeError("delete role", err)
	}

	s.log.Info().Int64("role_id", id).Msg("role deleted")
	return nil
}
