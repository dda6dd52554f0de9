package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

type ToolService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewToolService(store ports.Store, log zerolog.Logger) *ToolService {
	return &ToolService{store: store, log: log}
}

func (s *ToolService) List(ctx context.Context) ([]*domain.Tool, error) {
	tools, err := s.store.Tools().List(ctx)
	return tools, storeError("list tools", err)
}

func (s *ToolService) Get(ctx context.Context, id int64) (*domain.Tool, error) {
	t, err := s.store.Tools().FindByID(ctx, id)
	if err != nil {
		return nil, storeError("get tool", err)
	}
	return t, nil
}

func (s *ToolService) Create(ctx context.Context, in ports.ToolInput) (*domain.Tool, error) {
	t := toolFromInput(in)
	if err := required("name", t.Name, "description", t.Description, "target", t.Target); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		return tx.Tools().Insert(ctx, t)
	})
	if err != nil {
		return nil, storeError("add tool", err)
	}

	s.log.Info().Int64("tool_id", t.ID).Str("name", t.Name).Msg("tool added")
	return t, nil
}

func (s *ToolService) Update(ctx context.Context, id int64, in ports.ToolInput) (*domain.Tool, error) {
	next := toolFromInput(in)
	if err := required("name", next.Name, "description", next.Description, "target", next.Target); err != nil {
		return nil, err
	}

	var t *domain.Tool
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		if t, err = tx.Tools().FindByID(ctx, id); err != nil {
			return err
		}
		t.Name, t.Description, t.Target = next.Name, next.Description, next.Target
		return tx.Tools().Update(ctx, t)
	})
	if err != nil {
		return nil, storeError("edit tool", err)
	}

	s.log.Info().Int64("tool_id", t.ID).Msg("tool edited")
	return t, nil
}

func (s *ToolService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if _, err := tx.Tools().FindByID(ctx, id); err != nil {
			return err
		}
		return tx.Tools().Delete(ctx, id)
	})
	if err != nil {
		return storeError("delete tool", err)
	}

	s.log.Info().Int64("tool_id", id).Msg("tool deleted")
	return nil
}

func toolFromInput(in ports.ToolInput) *domain.Tool {
	return &domain.Tool{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Target:      strings.TrimSpace(in.Target),
	}
}
