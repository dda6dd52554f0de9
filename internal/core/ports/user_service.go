package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// CreateUserInput is used by admins to open an account directly.
type CreateUserInput struct {
	Email     string
	Name      string
	FirstName string
	LastName  string
	Password  string
	IsAdmin   bool
}

// UpdateUserInput carries every field an admin may edit.
type UpdateUserInput struct {
	Email     string
	Name      string
	FirstName string
	LastName  string
	IsAdmin   bool
	IsValid   bool
	IsBlocked bool
}

// AssignInput selects a group and a role; nil clears the reference.
type AssignInput struct {
	GroupID *int64
	RoleID  *int64
}

// UserService exposes admin operations on accounts. actor is the signed-in
// admin performing the operation; it is used for self-protection rules.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id int64, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
	Assign(ctx context.Context, actor *domain.User, id int64, input AssignInput) (*domain.User, error)
}
