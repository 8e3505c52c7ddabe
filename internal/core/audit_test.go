package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dell121212/laberaer/internal/infra/persistence/memory"
	"github.com/dell121212/laberaer/pkg/domain"
)

func TestAuditWithoutActorUsesPlaceholder(t *testing.T) {
	svc := NewInMemoryService(WithClock(newStepClock(testDay)))
	entry := svc.RecordAudit(context.Background(), domain.VerbExport, domain.EntityStrain, "导出3条数据到Excel")
	if entry.ActorID != UnknownActorID || entry.ActorName != UnknownActorName {
		t.Fatalf("unexpected actor %+v", entry)
	}
	if entry.ID == "" || !entry.Timestamp.After(testDay) {
		t.Fatalf("expected stamped entry, got %+v", entry)
	}
}

func TestAuditPersistFailureIsLogged(t *testing.T) {
	backend := newFailingBackend[domain.AuditEntry](domain.EntityAudit)
	backend.setErr(errors.New("disk full"))
	backends := memory.NewBackends()
	backends.Audit = backend
	log := &captureLogger{}
	svc := NewService(backends, WithLogger(log))

	svc.RecordAudit(context.Background(), domain.VerbDownload, domain.EntityMember, "下载成员导入模板")
	if len(svc.Audit.Entries()) != 1 {
		t.Fatalf("expected entry kept in memory")
	}
	if !log.has("w:audit entry not persisted") {
		t.Fatalf("expected warning, got %v", log.calls)
	}
}

func TestAuditLoadAndFilter(t *testing.T) {
	backends := memory.NewBackends()
	clock := newStepClock(testDay)
	svc := NewService(backends, WithClock(clock))
	ctx := context.Background()
	svc.RecordAudit(ctx, domain.VerbImport, domain.EntityStrain, "a")
	svc.RecordAudit(ctx, domain.VerbExport, domain.EntityStrain, "b")
	svc.RecordAudit(ctx, domain.VerbExport, domain.EntityMember, "c")

	fresh := NewService(backends, WithClock(clock))
	if err := fresh.Audit.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	entries := fresh.Audit.Entries()
	if len(entries) != 3 || entries[0].Detail != "c" || entries[2].Detail != "a" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatalf("entries out of order at %d", i)
		}
	}
	if got := fresh.Audit.Filter(domain.EntityStrain, ""); len(got) != 2 {
		t.Fatalf("expected 2 strain entries, got %d", len(got))
	}
	if got := fresh.Audit.Filter("", domain.VerbExport); len(got) != 2 {
		t.Fatalf("expected 2 export entries, got %d", len(got))
	}
	if got := fresh.Audit.Filter(domain.EntityMember, domain.VerbImport); len(got) != 0 {
		t.Fatalf("expected no member imports, got %d", len(got))
	}
}

func TestNewestFirstKeepsInsertionOrderOnTies(t *testing.T) {
	at := testDay.Add(time.Minute)
	entries := []domain.AuditEntry{
		{ID: "1", Timestamp: at},
		{ID: "2", Timestamp: at},
		{ID: "0", Timestamp: testDay},
	}
	newestFirst(entries)
	if entries[0].ID != "2" || entries[1].ID != "1" || entries[2].ID != "0" {
		t.Fatalf("unexpected order %v %v %v", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestAuditQueryByActor(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	if _, err := f.svc.Strains.Create(f.adminCtx, pleurotus()); err != nil {
		t.Fatalf("create strain: %v", err)
	}
	if _, err := f.svc.Members.Create(f.bobCtx, domain.Member{Name: "A", Group: "G", Phone: "1"}); err != nil {
		t.Fatalf("create member: %v", err)
	}
	byName := f.svc.Audit.Query(AuditQuery{Actor: "BOB"})
	if len(byName) != 1 || byName[0].Module != domain.EntityMember {
		t.Fatalf("expected Bob's member entry, got %+v", byName)
	}
	byID := f.svc.Audit.Query(AuditQuery{Actor: f.admin.ID, Verb: domain.VerbAdd})
	if len(byID) != 1 || byID[0].Module != domain.EntityStrain {
		t.Fatalf("expected admin's strain entry, got %+v", byID)
	}
	if got := f.svc.Audit.Query(AuditQuery{Actor: f.admin.ID, Module: domain.EntityMember}); len(got) != 0 {
		t.Fatalf("expected no admin member entries, got %+v", got)
	}
}
