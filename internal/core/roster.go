package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dell121212/laberaer/pkg/domain"
)

// Roster is the duty schedule store plus its calendar and reminder views.
// Status changes are relaxed: an admin may set any status at any time.
type Roster struct {
	*Store[domain.DutySchedule]
	clock Clock
}

func newRoster(store *Store[domain.DutySchedule], clock Clock) *Roster {
	r := &Roster{Store: store, clock: clock}
	store.SetCheck(uniqueDutyDate)
	return r
}

func uniqueDutyDate(_ context.Context, candidate domain.DutySchedule, others []domain.DutySchedule) error {
	for _, other := range others {
		if other.Date == candidate.Date {
			return domain.Invalid(domain.EntityDuty, "date", fmt.Sprintf("a schedule already exists for %s", candidate.Date))
		}
	}
	return nil
}

// Today returns the current calendar day in the clock's location.
func (r *Roster) Today() domain.Date {
	return domain.DateOf(r.clock.Now())
}

// ScheduleForDate returns the schedule for an exact calendar day.
func (r *Roster) ScheduleForDate(day domain.Date) (domain.DutySchedule, bool) {
	for _, s := range r.List() {
		if s.Date == day {
			return s, true
		}
	}
	return domain.DutySchedule{}, false
}

// TodaysScheduleFor returns today's schedule when name is on it.
func (r *Roster) TodaysScheduleFor(name string) (domain.DutySchedule, bool) {
	s, ok := r.ScheduleForDate(r.Today())
	if !ok || !s.HasMember(strings.TrimSpace(name)) {
		return domain.DutySchedule{}, false
	}
	return s, true
}

// IsReminderDue reports whether name has a pending duty today.
func (r *Roster) IsReminderDue(name string) bool {
	s, ok := r.TodaysScheduleFor(name)
	return ok && s.Status == domain.DutyPending
}

// SetStatus changes the status of a schedule. Any status may be set.
func (r *Roster) SetStatus(ctx context.Context, id string, status domain.DutyStatus) (domain.DutySchedule, error) {
	return r.Update(ctx, id, func(s *domain.DutySchedule) error {
		s.Status = status
		return nil
	})
}

// Complete marks the schedule completed.
func (r *Roster) Complete(ctx context.Context, id string) (domain.DutySchedule, error) {
	return r.SetStatus(ctx, id, domain.DutyCompleted)
}

// Skip marks the schedule skipped.
func (r *Roster) Skip(ctx context.Context, id string) (domain.DutySchedule, error) {
	return r.SetStatus(ctx, id, domain.DutySkipped)
}

// Month returns the schedules of one calendar month ordered by date.
func (r *Roster) Month(year int, month time.Month) []domain.DutySchedule {
	var out []domain.DutySchedule
	for _, s := range r.List() {
		if s.Date.In(year, month) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.DutySchedule) int { return strings.Compare(string(a.Date), string(b.Date)) })
	return out
}

// RosterStats counts schedules by status.
type RosterStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
}

// Stats counts every schedule by status.
func (r *Roster) Stats() RosterStats {
	var st RosterStats
	for _, s := range r.List() {
		st.Total++
		switch s.Status {
		case domain.DutyPending:
			st.Pending++
		case domain.DutyCompleted:
			st.Completed++
		case domain.DutySkipped:
			st.Skipped++
		}
	}
	return st
}

// StrainsDueForTransfer returns strains whose enabled transfer reminder is due
// on or before now, oldest due date first.
func StrainsDueForTransfer(strains []domain.Strain, now time.Time) []domain.Strain {
	var due []domain.Strain
	for _, s := range strains {
		if s.TransferReminder == nil {
			continue
		}
		next := s.TransferReminder.NextDue()
		if next.IsZero() || next.After(now) {
			continue
		}
		due = append(due, s)
	}
	slices.SortStableFunc(due, func(a, b domain.Strain) int {
		return a.TransferReminder.NextDue().Compare(b.TransferReminder.NextDue())
	})
	return due
}
