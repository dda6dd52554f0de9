package service

import (
	"context"
	"errors"
	"testing"

	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
)

func TestGroupService_CreateAndList(t *testing.T) {
	svc := NewGroupService(newStore(), nop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, ports.GroupInput{Name: "Tester Group", Description: "The Tester Group"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	groups, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, g := range groups {
		if g.Name == "Tester Group" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one Tester Group, got %d", count)
	}
}

func TestGroupService_Create_DuplicateName(t *testing.T) {
	svc := NewGroupService(newStore(), nop())
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.GroupInput{Name: "Tester Group", Description: "first"})
	_, err := svc.Create(ctx, ports.GroupInput{Name: "Tester Group", Description: "second"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	groups, _ := svc.List(ctx)
	if len(groups) != 1 {
		t.Fatalf("list count changed: %d", len(groups))
	}
}

func TestGroupService_Create_Validation(t *testing.T) {
	svc := NewGroupService(newStore(), nop())

	_, err := svc.Create(context.Background(), ports.GroupInput{Name: "  ", Description: ""})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
}

func TestGroupService_Update(t *testing.T) {
	svc := NewGroupService(newStore(), nop())
	ctx := context.Background()

	g, _ := svc.Create(ctx, ports.GroupInput{Name: "ops", Description: "Ops"})
	updated, err := svc.Update(ctx, g.ID, ports.GroupInput{Name: "sre", Description: "Site reliability"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "sre" || updated.Description != "Site reliability" {
		t.Fatalf("unexpected group %+v", updated)
	}

	if _, err := svc.Update(ctx, 999, ports.GroupInput{Name: "x", Description: "y"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGroupService_Update_ConflictKeepsOriginal(t *testing.T) {
	svc := NewGroupService(newStore(), nop())
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.GroupInput{Name: "ops", Description: "Ops"})
	dev, _ := svc.Create(ctx, ports.GroupInput{Name: "dev", Description: "Dev"})

	if _, err := svc.Update(ctx, dev.ID, ports.GroupInput{Name: "ops", Description: "renamed"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, _ := svc.Get(ctx, dev.ID)
	if got.Name != "dev" || got.Description != "Dev" {
		t.Fatalf("failed update must not leak partial changes: %+v", got)
	}
}

func TestGroupService_DeleteThenGet(t *testing.T) {
	svc := NewGroupService(newStore(), nop())
	ctx := context.Background()

	g, _ := svc.Create(ctx, ports.GroupInput{Name: "ops", Description: "Ops"})
	if err := svc.Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, g.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, g.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGroupService_Delete_NullifiesMembers(t *testing.T) {
	store := newStore()
	svc := NewGroupService(store, nop())
	ctx := context.Background()

	g, _ := svc.Create(ctx, ports.GroupInput{Name: "ops", Description: "Ops"})
	u := seedUser(t, store, "a@x.com", "a", false)
	u.GroupID = &g.ID
	_ = store.Users().Update(ctx, u)

	if err := svc.Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := store.Users().FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("member must survive group deletion: %v", err)
	}
	if got.GroupID != nil {
		t.Fatalf("expected group reference cleared")
	}
}

func TestGroupService_PersistenceFailureRollsBack(t *testing.T) {
	base := newStore()
	svc := NewGroupService(&failingStore{Store: base, err: errors.New("commit failed")}, nop())

	_, err := svc.Create(context.Background(), ports.GroupInput{Name: "ops", Description: "Ops"})
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if pe.Op != "add group" {
		t.Fatalf("unexpected op %q", pe.Op)
	}

	groups, _ := base.Groups().List(context.Background())
	if len(groups) != 0 {
		t.Fatalf("failed add must leave no row, found %d", len(groups))
	}
}
