package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type GroupRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Group, error)
	List(ctx context.Context) ([]*domain.Group, error)
	Insert(ctx context.Context, g *domain.Group) error
	Update(ctx context.Context, g *domain.Group) error
	Delete(ctx context.Context, id int64) error
}
