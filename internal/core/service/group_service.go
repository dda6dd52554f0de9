package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

type GroupService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewGroupService(store ports.Store, log zerolog.Logger) *GroupService {
	return &GroupService{store: store, log: log}
}

func (s *GroupService) List(ctx context.Context) ([]*domain.Group, error) {
	groups, err := s.store.Groups().List(ctx)
	return groups, storeError("list groups", err)
}

func (s *GroupService) Get(ctx context.Context, id int64) (*domain.Group, error) {
	g, err := s.store.Groups().FindByID(ctx, id)
	if err != nil {
		return nil, storeError("get group", err)
	}
	return g, nil
}

func (s *GroupService) Create(ctx context.Context, in ports.GroupInput) (*domain.Group, error) {
	g := &domain.Group{Name: strings.TrimSpace(in.Name), Description: strings.TrimSpace(in.Description)}
	if err := required("name", g.Name, "description", g.Description); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		return tx.Groups().Insert(ctx, g)
	})
	if err != nil {
		return nil, storeError("add group", err)
	}

	s.log.Info().Int64("group_id", g.ID).Str("name", g.Name).Msg("group added")
	return g, nil
}

func (s *GroupService) Update(ctx context.Context, id int64, in ports.GroupInput) (*domain.Group, error) {
	name, desc := strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)
	if err := required("name", name, "description", desc); err != nil {
		return nil, err
	}

	var g *domain.Group
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		if g, err = tx.Groups().FindByID(ctx, id); err != nil {
			return err
		}
		g.Name, g.Description = name, desc
		return tx.Groups().Update(ctx, g)
	})
	if err != nil {
		return nil, storeError("edit group", err)
	}

	s.log.Info().Int64("group_id", g.ID).Msg("group edited")
	return g, nil
}

// Delete removes the group. Members are kept and their group is cleared in
// the same transaction.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if _, err := tx.Groups().FindByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Users().ClearGroup(ctx, id); err != nil {
			return err
		}
		return tx.Groups().Delete(ctx, id)
	})
	if err != nil {
		return storeError("delete group", err)
	}

	s.log.Info().Int64("group_id", id).Msg("group deleted")
	return nil
}
