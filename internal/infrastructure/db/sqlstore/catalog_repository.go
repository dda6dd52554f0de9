package sqlstore

import (
	"context"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type namedRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// namedRepo holds the queries shared by the groups and roles tables.
type namedRepo struct {
	s      *Store
	table  string
	entity string
}

func (r namedRepo) find(ctx context.Context, id int64) (namedRow, error) {
	var row namedRow
	err := r.s.get(ctx, &row, `SELECT id, name, description FROM `+r.table+` WHERE id = ?`, id)
	return row, translate(r.entity, id, err)
}

func (r namedRepo) list(ctx context.Context) ([]namedRow, error) {
	var rows []namedRow
	err := r.s.selectAll(ctx, &rows, `SELECT id, name, description FROM `+r.table+` ORDER BY id`)
	return rows, err
}

func (r namedRepo) insert(ctx context.Context, name, description string) (int64, error) {
	id, err := r.s.insert(ctx,
		`INSERT INTO `+r.table+` (name, description) VALUES (?, ?) RETURNING id`,
		name, description)
	return id, translate(r.entity, 0, err)
}

func (r namedRepo) update(ctx context.Context, id int64, name, description string) error {
	ok, err := r.s.execOne(ctx,
		`UPDATE `+r.table+` SET name = ?, description = ? WHERE id = ?`,
		name, description, id)
	if err != nil {
		return translate(r.entity, id, err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: r.entity, ID: id}
	}
	return nil
}

func (r namedRepo) delete(ctx context.Context, id int64) error {
	ok, err := r.s.execOne(ctx, `DELETE FROM `+r.table+` WHERE id = ?`, id)
	if err != nil {
		return translate(r.entity, id, err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: r.entity, ID: id}
	}
	return nil
}

type groupRepo struct {
	namedRepo
}

func (r *groupRepo) FindByID(ctx context.Context, id int64) (*domain.Group, error) {
	row, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Group{ID: row.ID, Name: row.Name, Description: row.Description}, nil
}

func (r *groupRepo) List(ctx context.Context) ([]*domain.Group, error) {
	rows, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Group{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	return out, nil
}

func (r *groupRepo) Insert(ctx context.Context, g *domain.Group) error {
	id, err := r.insert(ctx, g.Name, g.Description)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func (r *groupRepo) Update(ctx context.Context, g *domain.Group) error {
	return r.update(ctx, g.ID, g.Name, g.Description)
}

func (r *groupRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

type roleRepo struct {
	namedRepo
}

func (r *roleRepo) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	row, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Role{ID: row.ID, Name: row.Name, Description: row.Description}, nil
}

func (r *roleRepo) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Role{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	return out, nil
}

func (r *roleRepo) Insert(ctx context.Context, role *domain.Role) error {
	id, err := r.insert(ctx, role.Name, role.Description)
	if err != nil {
		return err
	}
	role.ID = id
	return nil
}

func (r *roleRepo) Update(ctx context.Context, role *domain.Role) error {
	return r.update(ctx, role.ID, role.Name, role.Description)
}

func (r *roleRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

type toolRepo struct {
	s *Store
}

type toolRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Target      string `db:"target"`
}

func (r toolRow) toDomain() *domain.Tool {
	return &domain.Tool{ID: r.ID, Name: r.Name, Description: r.Description, Target: r.Target}
}

func (r *toolRepo) FindByID(ctx context.Context, id int64) (*domain.Tool, error) {
	var row toolRow
	if err := r.s.get(ctx, &row, `SELECT id, name, description, target FROM tools WHERE id = ?`, id); err != nil {
		return nil, translate(domain.EntityTool, id, err)
	}
	return row.toDomain(), nil
}

func (r *toolRepo) List(ctx context.Context) ([]*domain.Tool, error) {
	var rows []toolRow
	if err := r.s.selectAll(ctx, &rows, `SELECT id, name, description, target FROM tools ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]*domain.Tool, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *toolRepo) Insert(ctx context.Context, t *domain.Tool) error {
	id, err := r.s.insert(ctx,
		`INSERT INTO tools (name, description, target) VALUES (?, ?, ?) RETURNING id`,
		t.Name, t.Description, t.Target)
	if err != nil {
		return translate(domain.EntityTool, 0, err)
	}
	t.ID = id
	return nil
}

func (r *toolRepo) Update(ctx context.Context, t *domain.Tool) error {
	ok, err := r.s.execOne(ctx,
		`UPDATE tools SET name = ?, description = ?, target = ? WHERE id = ?`,
		t.Name, t.Description, t.Target, t.ID)
	if err != nil {
		return translate(domain.EntityTool, t.ID, err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityTool, ID: t.ID}
	}
	return nil
}

func (r *toolRepo) Delete(ctx context.Context, id int64) error {
	ok, err := r.s.execOne(ctx, `DELETE FROM tools WHERE id = ?`, id)
	if err != nil {
		return translate(domain.EntityTool, id, err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityTool, ID: id}
	}
	return nil
}
