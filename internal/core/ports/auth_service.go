package ports

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

// SignUpInput carries the self-registration form.
type SignUpInput struct {
	Email     string
	Name      string
	FirstName string
	LastName  string
	Password  string
}

type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, error)
	CurrentUser(ctx context.Context, id int64) (*domain.User, error)
}
