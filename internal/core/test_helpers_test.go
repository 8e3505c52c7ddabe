package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dell121212/laberaer/internal/infra/persistence/memory"
	"github.com/dell121212/laberaer/pkg/domain"
)

// stepClock advances one second on every call so timestamps stay ordered.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock(start time.Time) *stepClock { return &stepClock{t: start} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

var testDay = time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(s string) {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d:" + msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i:" + msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w:" + msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e:" + msg) }

func (c *captureLogger) has(entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call == entry {
			return true
		}
	}
	return false
}

// failingBackend wraps a memory collection and fails writes while err is set.
type failingBackend[T domain.Record[T]] struct {
	*memory.Collection[T]
	mu  sync.Mutex
	err error
}

func newFailingBackend[T domain.Record[T]](entity domain.EntityType) *failingBackend[T] {
	return &failingBackend[T]{Collection: memory.NewCollection[T](entity)}
}

func (f *failingBackend[T]) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *failingBackend[T]) current() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *failingBackend[T]) Insert(ctx context.Context, record T) (T, error) {
	if err := f.current(); err != nil {
		return record, err
	}
	return f.Collection.Insert(ctx, record)
}

func (f *failingBackend[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	if err := f.current(); err != nil {
		return err
	}
	return f.Collection.Patch(ctx, id, fields)
}

func (f *failingBackend[T]) Remove(ctx context.Context, id string) error {
	if err := f.current(); err != nil {
		return err
	}
	return f.Collection.Remove(ctx, id)
}

type fixture struct {
	svc      *Service
	admin    domain.Actor
	bob      domain.Actor
	adminCtx context.Context
	bobCtx   context.Context
}

func newFixture(t *testing.T, backends domain.Backends, opts ...ServiceOption) fixture {
	t.Helper()
	opts = append([]ServiceOption{WithClock(newStepClock(testDay))}, opts...)
	svc := NewService(backends, opts...)
	ctx := context.Background()
	admin, err := svc.Actors.EnsureAdmin(ctx)
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	bob, err := svc.Actors.Register(ctx, "Bob")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return fixture{
		svc:      svc,
		admin:    admin,
		bob:      bob,
		adminCtx: WithActor(ctx, admin),
		bobCtx:   WithActor(ctx, bob),
	}
}

func pleurotus() domain.Strain {
	return domain.Strain{
		Name:                    "Pleurotus ostreatus",
		ScientificName:          "Pleurotus ostreatus",
		Kind:                    "fungus",
		Source:                  "wild",
		PreservationMethod:      "freeze",
		PreservationTemperature: "-80C",
		Location:                "fridge-1",
	}
}

func alice(date domain.Date) domain.DutySchedule {
	return domain.DutySchedule{Date: date, Members: []string{"Alice"}, Tasks: []string{"clean bench"}, Status: domain.DutyPending}
}
