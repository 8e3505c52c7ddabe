package core

import (
	"errors"
	"testing"
	"time"

	"github.com/dell121212/laberaer/internal/infra/persistence/memory"
	"github.com/dell121212/laberaer/pkg/domain"
)

func TestReminderDueUntilCompleted(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	today := domain.DateOf(testDay)
	duty, err := f.svc.Duty.Create(f.bobCtx, alice(today))
	if err != nil {
		t.Fatalf("create duty: %v", err)
	}
	if !f.svc.Duty.IsReminderDue("Alice") {
		t.Fatalf("expected reminder due for Alice")
	}
	if f.svc.Duty.IsReminderDue("Bob") {
		t.Fatalf("Bob is not on today's schedule")
	}
	if _, err := f.svc.Duty.Complete(f.bobCtx, duty.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("members may not change status, got %v", err)
	}
	if _, err := f.svc.Duty.Complete(f.adminCtx, duty.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if f.svc.Duty.IsReminderDue("Alice") {
		t.Fatalf("completed duty must not remind")
	}
	if _, ok := f.svc.Duty.TodaysScheduleFor("Alice"); !ok {
		t.Fatalf("completed schedule is still today's schedule")
	}
}

func TestStatusTransitionsAreRelaxed(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	duty, err := f.svc.Duty.Create(f.bobCtx, alice("2024-03-08"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, status := range []domain.DutyStatus{domain.DutySkipped, domain.DutyCompleted, domain.DutyPending} {
		got, err := f.svc.Duty.SetStatus(f.adminCtx, duty.ID, status)
		if err != nil || got.Status != status {
			t.Fatalf("set %s: %+v %v", status, got, err)
		}
	}
	if _, err := f.svc.Duty.SetStatus(f.adminCtx, duty.ID, "archived"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown status to be rejected, got %v", err)
	}
}

func TestDutyDateIsUnique(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	if _, err := f.svc.Duty.Create(f.bobCtx, alice("2024-03-07")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := f.svc.Duty.Create(f.bobCtx, alice("2024-03-07"))
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "date" {
		t.Fatalf("expected date validation error, got %v", err)
	}
	other, err := f.svc.Duty.Create(f.bobCtx, alice("2024-03-09"))
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := f.svc.Duty.Update(f.adminCtx, other.ID, func(d *domain.DutySchedule) error {
		d.Date = "2024-03-07"
		return nil
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected update onto a taken date to fail, got %v", err)
	}
	if _, err := f.svc.Duty.Update(f.adminCtx, other.ID, func(d *domain.DutySchedule) error {
		d.Notes = "moved bench"
		return nil
	}); err != nil {
		t.Fatalf("update keeping own date: %v", err)
	}
}

func TestMonthAndStats(t *testing.T) {
	f := newFixture(t, memory.NewBackends())
	for _, day := range []domain.Date{"2024-03-20", "2024-04-01", "2024-03-02", "2024-02-29"} {
		if _, err := f.svc.Duty.Create(f.bobCtx, alice(day)); err != nil {
			t.Fatalf("create %s: %v", day, err)
		}
	}
	march := f.svc.Duty.Month(2024, time.March)
	if len(march) != 2 || march[0].Date != "2024-03-02" || march[1].Date != "2024-03-20" {
		t.Fatalf("unexpected march schedules %+v", march)
	}
	first := f.svc.Duty.List()[0]
	if _, err := f.svc.Duty.Skip(f.adminCtx, first.ID); err != nil {
		t.Fatalf("skip: %v", err)
	}
	stats := f.svc.Duty.Stats()
	if stats != (RosterStats{Total: 4, Pending: 3, Skipped: 1}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStrainsDueForTransfer(t *testing.T) {
	now := testDay
	at := func(days int) *time.Time {
		v := now.AddDate(0, 0, -days)
		return &v
	}
	strains := []domain.Strain{
		{ID: "late", TransferReminder: &domain.TransferReminder{Enabled: true, IntervalDays: 30, LastTransferDate: at(60)}},
		{ID: "fresh", TransferReminder: &domain.TransferReminder{Enabled: true, IntervalDays: 30, LastTransferDate: at(3)}},
		{ID: "due", TransferReminder: &domain.TransferReminder{Enabled: true, IntervalDays: 7, LastTransferDate: at(7)}},
		{ID: "off", TransferReminder: &domain.TransferReminder{Enabled: false, IntervalDays: 1, LastTransferDate: at(90)}},
		{ID: "never", TransferReminder: &domain.TransferReminder{Enabled: true, IntervalDays: 1}},
		{ID: "none"},
	}
	due := StrainsDueForTransfer(strains, now)
	if len(due) != 2 || due[0].ID != "late" || due[1].ID != "due" {
		t.Fatalf("unexpected due strains %+v", due)
	}
}
