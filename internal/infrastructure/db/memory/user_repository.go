package memory

import (
	"context"
	"sort"
	"time"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.s.do(func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return &domain.NotFoundError{Entity: domain.EntityUser, ID: id}
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return sameFold(u.Email, email) })
}

func (r *userRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Name == name })
}

func (r *userRepo) findBy(match func(domain.User) bool) (*domain.User, error) {
	var out *domain.User
	err := r.s.do(func(d *dataset) error {
		for _, u := range d.users {
			if match(u) {
				found := u
				out = &found
				return nil
			}
		}
		return &domain.NotFoundError{Entity: domain.EntityUser}
	})
	return out, err
}

func (r *userRepo) List(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	err := r.s.do(func(d *dataset) error {
		out = make([]*domain.User, 0, len(d.users))
		for _, u := range d.users {
			u := u
			out = append(out, &u)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r *userRepo) Insert(_ context.Context, u *domain.User) error {
	return r.s.do(func(d *dataset) error {
		if err := checkUserUnique(d, u); err != nil {
			return err
		}
		now := time.Now().UTC()
		u.ID = d.next(domain.EntityUser)
		u.CreatedAt, u.UpdatedAt = now, now
		d.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.users[u.ID]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityUser, ID: u.ID}
		}
		if err := checkUserUnique(d, u); err != nil {
			return err
		}
		u.UpdatedAt = time.Now().UTC()
		d.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	return r.s.do(func(d *dataset) error {
		if _, ok := d.users[id]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityUser, ID: id}
		}
		delete(d.users, id)
		return nil
	})
}

func (r *userRepo) ClearGroup(_ context.Context, groupID int64) error {
	return r.s.do(func(d *dataset) error {
		for id, u := range d.users {
			if u.GroupID != nil && *u.GroupID == groupID {
				u.GroupID = nil
				d.users[id] = u
			}
		}
		return nil
	})
}

func (r *userRepo) ClearRole(_ context.Context, roleID int64) error {
	return r.s.do(func(d *dataset) error {
		for id, u := range d.users {
			if u.RoleID != nil && *u.RoleID == roleID {
				u.RoleID = nil
				d.users[id] = u
			}
		}
		return nil
	})
}

func checkUserUnique(d *dataset, u *domain.User) error {
	for _, other := range d.users {
		if other.ID == u.ID {
			continue
		}
		if sameFold(other.Email, u.Email) {
			return &domain.ConflictError{Entity: domain.EntityUser, Field: "email"}
		}
		if other.Name == u.Name {
			return &domain.ConflictError{Entity: domain.EntityUser, Field: "name"}
		}
	}
	return nil
}
