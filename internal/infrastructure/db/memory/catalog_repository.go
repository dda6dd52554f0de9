package memory

import (
	"context"
	"sort"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type groupRepo struct {
	s *Store
}

func (r *groupRepo) FindByID(_ context.Context, id int64) (*domain.Group, error) {
	var out *domain.Group
	err := r.s.do(func(d *dataset) error {
		g, ok := d.groups[id]
		if !ok {
			return &domain.NotFoundError{Entity: domain.EntityGroup, ID: id}
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *groupRepo) List(_ context.Context) ([]*domain.Group, error) {
	var out []*domain.Group
	err := r.s.do(func(d *dataset) error {
		out = make([]*domain.Group, 0, len(d.groups))
		for _, g := range d.groups {
			g := g
			out = append(out, &g)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *groupRepo) Insert(_ context.Context, g *domain.Group) error {
	return r.s.do(func(d *dataset) error {
		for _, other := range d.groups {
			if other.Name == g.Name {
				return &domain.ConflictError{Entity: domain.EntityGroup, Field: "name"}
			}
		}
		g.ID = d.next(domain.EntityGroup)
		d.groups[g.ID] = *g
		return nil
	})
}

func (r *groupRepo) Update(_ context.Context, g *domain.Group) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.groups[g.ID]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityGroup, ID: g.ID}
		}
		for _, other := range d.groups {
			if other.ID != g.ID && other.Name == g.Name {
				return &domain.ConflictError{Entity: domain.EntityGroup, Field: "name"}
			}
		}
		d.groups[g.ID] = *g
		return nil
	})
}

func (r *groupRepo) Delete(_ context.Context, id int64) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.groups[id]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityGroup, ID: id}
		}
		delete(d.groups, id)
		return nil
	})
}

type roleRepo struct {
	s *Store
}

func (r *roleRepo) FindByID(_ context.Context, id int64) (*domain.Role, error) {
	var out *domain.Role
	err := r.s.do(func(d *dataset) error {
		role, ok := d.roles[id]
		if !ok {
			return &domain.NotFoundError{Entity: domain.EntityRole, ID: id}
		}
		out = &role
		return nil
	})
	return out, err
}

func (r *roleRepo) List(_ context.Context) ([]*domain.Role, error) {
	var out []*domain.Role
	err := r.s.do(func(d *dataset) error {
		out = make([]*domain.Role, 0, len(d.roles))
		for _, role := range d.roles {
			role := role
			out = append(out, &role)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *roleRepo) Insert(_ context.Context, role *domain.Role) error {
	return r.s.do(func(d *dataset) error {
		for _, other := range d.roles {
			if other.Name == role.Name {
				return &domain.ConflictError{Entity: domain.EntityRole, Field: "name"}
			}
		}
		role.ID = d.next(domain.EntityRole)
		d.roles[role.ID] = *role
		return nil
	})
}

func (r *roleRepo) Update(_ context.Context, role *domain.Role) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.roles[role.ID]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityRole, ID: role.ID}
		}
		for _, other := range d.roles {
			if other.ID != role.ID && other.Name == role.Name {
				return &domain.ConflictError{Entity: domain.EntityRole, Field: "name"}
			}
		}
		d.roles[role.ID] = *role
		return nil
	})
}

func (r *roleRepo) Delete(_ context.Context, id int64) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.roles[id]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityRole, ID: id}
		}
		delete(d.roles, id)
		return nil
	})
}

type toolRepo struct {
	s *Store
}

func (r *toolRepo) FindByID(_ context.Context, id int64) (*domain.Tool, error) {
	var out *domain.Tool
	err := r.s.do(func(d *dataset) error {
		t, ok := d.tools[id]
		if !ok {
			return &domain.NotFoundError{Entity: domain.EntityTool, ID: id}
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *toolRepo) List(_ context.Context) ([]*domain.Tool, error) {
	var out []*domain.Tool
	err := r.s.do(func(d *dataset) error {
		out = make([]*domain.Tool, 0, len(d.tools))
		for _, t := range d.tools {
			t := t
			out = append(out, &t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *toolRepo) Insert(_ context.Context, t *domain.Tool) error {
	return r.s.do(func(d *dataset) error {
		for _, other := range d.tools {
			if other.Name == t.Name {
				return &domain.ConflictError{Entity: domain.EntityTool, Field: "name"}
			}
		}
		t.ID = d.next(domain.EntityTool)
		d.tools[t.ID] = *t
		return nil
	})
}

func (r *toolRepo) Update(_ context.Context, t *domain.Tool) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.tools[t.ID]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityTool, ID: t.ID}
		}
		for _, other := range d.tools {
			if other.ID != t.ID && other.Name == t.Name {
				return &domain.ConflictError{Entity: domain.EntityTool, Field: "name"}
			}
		}
		d.tools[t.ID] = *t
		return nil
	})
}

func (r *toolRepo) Delete(_ context.Context, id int64) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.tools[id]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityTool, ID: id}
		}
		delete(d.tools, id)
		return nil
	})
}
