package ports

import "context"

// Store groups the per-entity repositories of a single persistent backend.
//
// Repositories returned by a Store obtained inside WithinTx operate on that
// transaction; the transaction commits when fn returns nil and rolls back
// otherwise. Repositories report missing rows as *domain.NotFoundError and
// unique constraint violations as *domain.ConflictError.
type Store interface {
	Users() UserRepository
	Groups() GroupRepository
	Roles() RoleRepository
	Tools() ToolRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
