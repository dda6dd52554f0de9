package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// GroupInput is the mutable part of a group.
type GroupInput struct {
	Name        string
	Description string
}

// RoleInput is the mutable part of a role.
type RoleInput struct {
	Name        string
	Description string
}

// ToolInput is the mutable part of a tool.
type ToolInput struct {
	Name        string
	Description string
	Target      string
}

type GroupService interface {
	List(ctx context.Context) ([]*domain.Group, error)
	Get(ctx context.Context, id int64) (*domain.Group, error)
	Create(ctx context.Context, input GroupInput) (*domain.Group, error)
	Update(ctx context.Context, id int64, input GroupInput) (*domain.Group, error)
	// Delete removes the group and detaches its members.
	Delete(ctx context.Context, id int64) error
}

type RoleService interface {
	List(ctx context.Context) ([]*domain.Role, error)
	Get(ctx context.Context, id int64) (*domain.Role, error)
	Create(ctx context.Context, input RoleInput) (*domain.Role, error)
	Update(ctx context.Context, id int64, input RoleInput) (*domain.Role, error)
	// Delete removes the role and detaches its holders.
	Delete(ctx context.Context, id int64) error
}

type ToolService interface {
	List(ctx context.Context) ([]*domain.Tool, error)
	Get(ctx context.Context, id int64) (*domain.Tool, error)
	Create(ctx context.Context, input ToolInput) (*domain.Tool, error)
	Update(ctx context.Context, id int64, input ToolInput) (*domain.Tool, error)
	Delete(ctx context.Context, id int64) error
}
