package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := Connect(ctx, Config{
		Driver: DriverSQLite,
		URL:    "file:" + filepath.Join(t.TempDir(), "toolbox.db"),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func ptr(v int64) *int64 { return &v }

func TestStore_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := &domain.Group{Name: "ops", Description: "Operations"}
	if err := s.Groups().Insert(ctx, g); err != nil {
		t.Fatalf("insert group: %v", err)
	}

	u := &domain.User{
		Email:        "alice@example.com",
		Name:         "alice",
		PasswordHash: "hash",
		GroupID:      ptr(g.ID),
		IsAdmin:      true,
		IsValid:      true,
	}
	if err := s.Users().Insert(ctx, u); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	got, err := s.Users().FindByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if got.ID != u.ID || got.GroupID == nil || *got.GroupID != g.ID || !got.IsAdmin || got.RoleID != nil {
		t.Fatalf("unexpected user: %+v", got)
	}

	got.FirstName = "Alice"
	got.GroupID = nil
	if err := s.Users().Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	reloaded, err := s.Users().FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if reloaded.FirstName != "Alice" || reloaded.GroupID != nil {
		t.Fatalf("update not persisted: %+v", reloaded)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Users().FindByID(ctx, 42)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 42 || nf.Entity != domain.EntityUser {
		t.Fatalf("expected not found for user 42, got %v", err)
	}

	if err := s.Tools().Delete(ctx, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
	if err := s.Roles().Update(ctx, &domain.Role{ID: 3, Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestStore_UniqueViolations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Groups().Insert(ctx, &domain.Group{Name: "Tester Group"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := s.Groups().Insert(ctx, &domain.Group{Name: "Tester Group"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflict.Entity != domain.EntityGroup || conflict.Field != "name" {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}

	if err := s.Users().Insert(ctx, &domain.User{Email: "a@x.io", Name: "a", PasswordHash: "h"}); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	err = s.Users().Insert(ctx, &domain.User{Email: "a@x.io", Name: "b", PasswordHash: "h"})
	if !errors.As(err, &conflict) || conflict.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestStore_WithinTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := tx.Tools().Insert(ctx, &domain.Tool{Name: "wiki", Target: "https://wiki"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	tools, err := s.Tools().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tools) != 0 {
		t.Fatalf("expected rollback, found %+v", tools)
	}
}

func TestStore_GroupDeleteNullifiesMembers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := &domain.Group{Name: "ops"}
	r := &domain.Role{Name: "dev"}
	if err := s.Groups().Insert(ctx, g); err != nil {
		t.Fatal(err)
	}
	if err := s.Roles().Insert(ctx, r); err != nil {
		t.Fatal(err)
	}
	u := &domain.User{Email: "b@x.io", Name: "bob", PasswordHash: "h", GroupID: ptr(g.ID), RoleID: ptr(r.ID)}
	if err := s.Users().Insert(ctx, u); err != nil {
		t.Fatal(err)
	}

	err := s.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := tx.Users().ClearGroup(ctx, g.ID); err != nil {
			return err
		}
		return tx.Groups().Delete(ctx, g.ID)
	})
	if err != nil {
		t.Fatalf("delete group: %v", err)
	}

	got, err := s.Users().FindByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.GroupID != nil {
		t.Fatalf("expected group cleared, got %d", *got.GroupID)
	}
	if got.RoleID == nil || *got.RoleID != r.ID {
		t.Fatalf("role should be untouched: %+v", got.RoleID)
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("file:test.db?_foreign_keys=off")
	if want := "file:test.db?_busy_timeout=5000&_foreign_keys=off&_txlock=immediate"; dsn != want {
		t.Fatalf("dsn = %q, want %q", dsn, want)
	}
}

func TestConstraintField(t *testing.T) {
	cases := map[string]string{
		"users_email_key": "email",
		"groups_name_key": "name",
	}
	for in, want := range cases {
		if got := constraintField(in); got != want {
			t.Errorf("constraintField(%q) = %q, want %q", in, got, want)
		}
	}
	if got := sqliteField("UNIQUE constraint failed: users.name"); got != "name" {
		t.Errorf("sqliteField = %q", got)
	}
}
