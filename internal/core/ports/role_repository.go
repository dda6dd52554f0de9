package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type RoleRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Insert(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id int64) error
}
