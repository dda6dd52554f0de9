package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Insert persists u and sets u.ID.
	Insert(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
	// ClearGroup nullifies the group reference of every member of groupID.
	ClearGroup(ctx context.Context, groupID int64) error
	// ClearRole nullifies the role reference of every holder of roleID.
	ClearRole(ctx context.Context, roleID int64) error
}
