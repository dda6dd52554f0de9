package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type ToolRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Tool, error)
	List(ctx context.Context) ([]*domain.Tool, error)
	Insert(ctx context.Context, t *domain.Tool) error
	Update(ctx context.Context, t *domain.Tool) error
	Delete(ctx context.Context, id int64) error
}
