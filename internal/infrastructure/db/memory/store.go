// Package memory provides in-process implementations of the persistence and
// session ports. They back the testing profile and unit tests; data does not
// survive a restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

type dataset struct {
	users  map[int64]domain.User
	groups map[int64]domain.Group
	roles  map[int64]domain.Role
	tools  map[int64]domain.Tool
	seq    map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		users:  make(map[int64]domain.User),
		groups: make(map[int64]domain.Group),
		roles:  make(map[int64]domain.Role),
		tools:  make(map[int64]domain.Tool),
		seq:    make(map[string]int64),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.groups {
		c.groups[k] = v
	}
	for k, v := range d.roles {
		c.roles[k] = v
	}
	for k, v := range d.tools {
		c.tools[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

func (d *dataset) next(entity string) int64 {
	d.seq[entity]++
	return d.seq[entity]
}

// Store is a ports.Store kept in memory. Transactions are serialised and
// operate on a copy that replaces the live data only on commit.
type Store struct {
	mu   *sync.Mutex
	data *dataset
	tx   bool
}

var _ ports.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newDataset()}
}

func (s *Store) Users() ports.UserRepository   { return &userRepo{s: s} }
func (s *Store) Groups() ports.GroupRepository { return &groupRepo{s: s} }
func (s *Store) Roles() ports.RoleRepository   { return &roleRepo{s: s} }
func (s *Store) Tools() ports.ToolRepository   { return &toolRepo{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if s.tx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, data: s.data.clone(), tx: true}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// do runs fn against the live data, holding the lock outside transactions.
func (s *Store) do(fn func(d *dataset) error) error {
	if !s.tx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

func sameFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
