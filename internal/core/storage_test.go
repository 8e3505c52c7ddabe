package core

import (
	"context"
	"testing"

	"github.com/dell121212/laberaer/internal/config"
)

func TestOpenBackendsMemory(t *testing.T) {
	backends, err := OpenBackends(context.Background(), config.Storage{Driver: string(StorageMemory)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if backends.Strains == nil || backends.Audit == nil {
		t.Fatalf("expected every bucket wired: %+v", backends)
	}
	if err := backends.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestOpenBackendsUnknownDriver(t *testing.T) {
	if _, err := OpenBackends(context.Background(), config.Storage{Driver: "mongo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenBackendsSQLiteFile(t *testing.T) {
	path := t.TempDir() + "/lab.db"
	backends, err := OpenBackends(context.Background(), config.Storage{SQLitePath: path})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer func() { _ = backends.Shutdown() }()

	svc := NewService(backends)
	ctx := context.Background()
	admin, err := svc.Actors.EnsureAdmin(ctx)
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	created, err := svc.Strains.Create(WithActor(ctx, admin), pleurotus())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	fresh := NewService(backends)
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := fresh.Strains.Get(created.ID)
	if !ok || got.Name != created.Name {
		t.Fatalf("expected strain persisted, got %+v", got)
	}
}
