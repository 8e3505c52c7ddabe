package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/dell121212/laberaer/pkg/domain"
)

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[domain.Member](domain.EntityMember)

	for _, id := range []string{"m1", "m2", "m3"} {
		if _, err := c.Insert(ctx, domain.Member{ID: id, Name: "n-" + id}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if err := c.Patch(ctx, "m2", map[string]any{"phone": "123"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := c.Remove(ctx, "m1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	all, err := c.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "m2" || all[1].ID != "m3" {
		t.Fatalf("expected insertion order m2,m3 got %+v", all)
	}
	if all[0].Phone != "123" || all[0].Name != "n-m2" {
		t.Fatalf("patch not applied: %+v", all[0])
	}
}

func TestCollectionMissingIDs(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[domain.Thesis](domain.EntityThesis)
	if err := c.Patch(ctx, "nope", map[string]any{"title": "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on patch, got %v", err)
	}
	if err := c.Remove(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on remove, got %v", err)
	}
}

func TestCollectionIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[domain.DutySchedule](domain.EntityDuty)
	rec := domain.DutySchedule{ID: "d1", Members: []string{"Alice"}}
	if _, err := c.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rec.Members[0] = "Mallory"
	all, _ := c.ListAll(ctx)
	all[0].Members[0] = "Eve"
	again, _ := c.ListAll(ctx)
	if again[0].Members[0] != "Alice" {
		t.Fatalf("stored record leaked mutation: %+v", again[0])
	}
}

func TestNewBackendsPopulatesEveryBucket(t *testing.T) {
	b := NewBackends()
	if b.Strains == nil || b.Members == nil || b.Duties == nil || b.Media == nil || b.Theses == nil || b.Actors == nil || b.Audit == nil {
		t.Fatalf("expected every backend to be set: %+v", b)
	}
	if err := b.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
