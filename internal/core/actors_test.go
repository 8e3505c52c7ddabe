package core

import (
	"context"
	"errors"
	"testing"

	"github.com/dell121212/laberaer/internal/infra/persistence/memory"
	"github.com/dell121212/laberaer/pkg/domain"
)

func TestEnsureAdminSeedsOnce(t *testing.T) {
	log := &captureLogger{}
	svc := NewInMemoryService(WithLogger(log))
	ctx := context.Background()
	first, err := svc.Actors.EnsureAdmin(ctx)
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if first.ID != DefaultAdminID || !first.IsAdmin() || first.DisplayName != DefaultAdminName {
		t.Fatalf("unexpected seeded admin %+v", first)
	}
	again, err := svc.Actors.EnsureAdmin(ctx)
	if err != nil || again.ID != first.ID {
		t.Fatalf("expected existing admin, got %+v %v", again, err)
	}
	if got := len(svc.Actors.List()); got != 1 {
		t.Fatalf("expected a single actor, got %d", got)
	}
	if !log.has("i:default admin seeded") {
		t.Fatalf("expected seed to be logged, got %v", log.calls)
	}
	if len(svc.Audit.Entries()) != 0 {
		t.Fatalf("seeding is not an audited change")
	}
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	if _, err := f.svc.Actors.Register(context.Background(), " bob "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate name to fail, got %v", err)
	}
	if _, err := f.svc.Actors.Register(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected empty name to fail, got %v", err)
	}
	got, ok := f.svc.Actors.FindByName("BOB")
	if !ok || got.ID != f.bob.ID {
		t.Fatalf("expected case-insensitive lookup, got %+v", got)
	}
	head, _ := f.svc.Audit.Head()
	if head.Module != domain.EntityActor || head.ActorID != UnknownActorID {
		t.Fatalf("expected registration audited as unknown actor, got %+v", head)
	}
}

func TestPromoteGrantsAdminRights(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	strain, err := f.svc.Strains.Create(f.bobCtx, pleurotus())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Actors.SetRole(f.bobCtx, f.bob.ID, domain.RoleAdmin); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("members may not promote themselves, got %v", err)
	}
	if _, err := f.svc.Actors.SetRole(f.adminCtx, f.bob.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := f.svc.Strains.Delete(f.bobCtx, strain.ID); err != nil {
		t.Fatalf("promoted actor should delete: %v", err)
	}
	if _, err := f.svc.Actors.SetRole(f.adminCtx, f.bob.ID, "owner"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown role rejected, got %v", err)
	}
}

func TestSessionSignIn(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	if _, err := f.svc.SignIn("nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.SignIn(f.bob.ID); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	ctx := context.Background()
	if _, err := f.svc.Theses.Create(ctx, domain.Thesis{Title: "T", Author: "A"}); err != nil {
		t.Fatalf("session actor should create: %v", err)
	}
	if head, _ := f.svc.Audit.Head(); head.ActorName != "Bob" {
		t.Fatalf("expected audit attributed to session actor, got %+v", head)
	}
	f.svc.Identity.SignOut()
	if _, err := f.svc.Theses.Create(ctx, domain.Thesis{Title: "T2", Author: "A"}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected denial after sign out, got %v", err)
	}
}

func TestRemovedActorLosesAccess(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	if _, err := f.svc.Actors.SetRole(f.adminCtx, f.bob.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	strain, err := f.svc.Strains.Create(f.adminCtx, pleurotus())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.svc.Actors.Remove(f.adminCtx, f.bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.svc.Strains.Delete(f.bobCtx, strain.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("removed admin must be denied, got %v", err)
	}
	if f.svc.Strains.Len() != 1 {
		t.Fatalf("expected strain kept, got %d", f.svc.Strains.Len())
	}
	if _, ok := f.svc.Identity.CurrentActor(f.bobCtx); ok {
		t.Fatalf("removed actor should not resolve")
	}

	f.svc.Identity.SignIn(f.admin)
	if err := f.svc.Actors.Remove(f.adminCtx, f.admin.ID); err != nil {
		t.Fatalf("remove admin: %v", err)
	}
	if _, err := f.svc.Theses.Create(context.Background(), domain.Thesis{Title: "T", Author: "A"}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("removed session actor must be denied, got %v", err)
	}
}

func TestEnsureAdminRespectsUniqueNames(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()
	member, err := svc.Actors.Register(ctx, "Admin")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Actors.EnsureAdmin(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected name clash to fail the seed, got %v", err)
	}
	actors := svc.Actors.List()
	if len(actors) != 1 || actors[0].ID != member.ID {
		t.Fatalf("expected only the member, got %+v", actors)
	}
	got, ok := svc.Actors.FindByName(DefaultAdminName)
	if !ok || got.ID != member.ID || got.IsAdmin() {
		t.Fatalf("unexpected lookup %+v", got)
	}
}
