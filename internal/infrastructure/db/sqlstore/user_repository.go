package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

const userColumns = `id, email, name, first_name, last_name, password_hash,
	group_id, role_id, is_admin, is_valid, is_blocked, created_at, updated_at`

type userRow struct {
	ID           int64         `db:"id"`
	Email        string        `db:"email"`
	Name         string        `db:"name"`
	FirstName    string        `db:"first_name"`
	LastName     string        `db:"last_name"`
	PasswordHash string        `db:"password_hash"`
	GroupID      sql.NullInt64 `db:"group_id"`
	RoleID       sql.NullInt64 `db:"role_id"`
	IsAdmin      bool          `db:"is_admin"`
	IsValid      bool          `db:"is_valid"`
	IsBlocked    bool          `db:"is_blocked"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		GroupID:      fromNull(r.GroupID),
		RoleID:       fromNull(r.RoleID),
		IsAdmin:      r.IsAdmin,
		IsValid:      r.IsValid,
		IsBlocked:    r.IsBlocked,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func toNull(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func fromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, id, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, 0, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, email)
}

func (r *userRepo) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findOne(ctx, 0, `SELECT `+userColumns+` FROM users WHERE name = ?`, name)
}

func (r *userRepo) findOne(ctx context.Context, id int64, query string, args ...interface{}) (*domain.User, error) {
	var row userRow
	if err := r.s.get(ctx, &row, query, args...); err != nil {
		return nil, translate(domain.EntityUser, id, err)
	}
	return row.toDomain(), nil
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := r.s.selectAll(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *userRepo) Insert(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	id, err := r.s.insert(ctx, `INSERT INTO users
		(email, name, first_name, last_name, password_hash, group_id, role_id,
		 is_admin, is_valid, is_blocked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		u.Email, u.Name, u.FirstName, u.LastName, u.PasswordHash,
		toNull(u.GroupID), toNull(u.RoleID),
		u.IsAdmin, u.IsValid, u.IsBlocked, now, now)
	if err != nil {
		return translate(domain.EntityUser, 0, err)
	}
	u.ID = id
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	ok, err := r.s.execOne(ctx, `UPDATE users SET
		email = ?, name = ?, first_name = ?, last_name = ?, password_hash = ?,
		group_id = ?, role_id = ?, is_admin = ?, is_valid = ?, is_blocked = ?,
		updated_at = ?
		WHERE id = ?`,
		u.Email, u.Name, u.FirstName, u.LastName, u.PasswordHash,
		toNull(u.GroupID), toNull(u.RoleID),
		u.IsAdmin, u.IsValid, u.IsBlocked, now, u.ID)
	if err != nil {
		return translate(domain.EntityUser, u.ID, err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityUser, ID: u.ID}
	}
	u.UpdatedAt = now
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	ok, err := r.s.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return translate(domain.EntityUser, id, err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityUser, ID: id}
	}
	return nil
}

func (r *userRepo) ClearGroup(ctx context.Context, groupID int64) error {
	_, err := r.s.exec(ctx, `UPDATE users SET group_id = NULL WHERE group_id = ?`, groupID)
	return err
}

func (r *userRepo) ClearRole(ctx context.Context, roleID int64) error {
	_, err := r.s.exec(ctx, `UPDATE users SET role_id = NULL WHERE role_id = ?`, roleID)
	return err
}
