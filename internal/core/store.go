package core

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dell121212/laberaer/pkg/domain"
)

// CheckFunc enforces cross-record invariants before a record is stored.
// others holds every other record of the store.
type CheckFunc[T any] func(ctx context.Context, candidate T, others []T) error

// Store owns the in-memory collection of one entity type. Mutations are
// applied optimistically and then persisted; a failed round trip leaves the
// in-memory state in place and is reported as ErrPersistence.
type Store[T domain.Record[T]] struct {
	mu       sync.RWMutex
	entity   domain.EntityType
	items    []T
	backend  domain.Backend[T]
	identity ActorProvider
	audit    *AuditLog
	obs      observers
	check    CheckFunc[T]
}

func newStore[T domain.Record[T]](entity domain.EntityType, backend domain.Backend[T], identity ActorProvider, audit *AuditLog, obs observers) *Store[T] {
	return &Store[T]{entity: entity, backend: backend, identity: identity, audit: audit, obs: obs}
}

// Entity returns the entity type held by the store.
func (s *Store[T]) Entity() domain.EntityType { return s.entity }

// SetCheck installs the cross-record invariant check.
func (s *Store[T]) SetCheck(fn CheckFunc[T]) {
	s.mu.Lock()
	s.check = fn
	s.mu.Unlock()
}

// Create authorizes, validates and stores a new record built from draft.
func (s *Store[T]) Create(ctx context.Context, draft T) (T, error) {
	var created T
	err := s.obs.observe(ctx, s.operation("create"), func(ctx context.Context) error {
		if err := s.authorize(ctx, domain.OpCreate); err != nil {
			return err
		}
		var err error
		created, err = s.insert(ctx, draft)
		return err
	})
	return created, err
}

// insert skips authorization; it backs Create and actor registration.
func (s *Store[T]) insert(ctx context.Context, draft T) (T, error) {
	now := s.obs.clock.Now()
	record := draft.Stamp(uuid.NewString(), now, now)

	s.mu.Lock()
	if err := s.validate(ctx, record, s.items); err != nil {
		s.mu.Unlock()
		var zero T
		return zero, err
	}
	s.items = append([]T{record}, s.items...)
	s.mu.Unlock()

	if _, err := s.backend.Insert(ctx, record); err != nil {
		return record.Clone(), s.persistenceFailure(domain.OpCreate, record.Key(), err)
	}
	s.audit.Record(ctx, domain.VerbAdd, s.entity, s.detail(domain.VerbAdd, record))
	s.obs.logger.Debug("record created", "entity", string(s.entity), "id", record.Key())
	return record.Clone(), nil
}

// Update applies mutate to a copy of the record and replaces it. Only admins
// may update.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var updated T
	err := s.obs.observe(ctx, s.operation("update"), func(ctx context.Context) error {
		if err := s.authorize(ctx, domain.OpUpdate); err != nil {
			return err
		}
		before, after, err := s.replace(ctx, id, mutate)
		if err != nil {
			return err
		}
		updated = after.Clone()
		fields, err := domain.Diff(before, after)
		if err != nil {
			return s.persistenceFailure(domain.OpUpdate, id, err)
		}
		if err := s.backend.Patch(ctx, id, fields); err != nil {
			return s.persistenceFailure(domain.OpUpdate, id, err)
		}
		s.audit.Record(ctx, domain.VerbEdit, s.entity, s.detail(domain.VerbEdit, after))
		return nil
	})
	return updated, err
}

func (s *Store[T]) replace(ctx context.Context, id string, mutate func(*T) error) (T, T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return zero, zero, domain.NotFoundError{Entity: s.entity, ID: id}
	}
	before := s.items[idx]
	next := before.Clone()
	if mutate != nil {
		if err := mutate(&next); err != nil {
			return zero, zero, err
		}
	}
	next = next.Stamp(id, before.Created(), s.obs.clock.Now())
	others := make([]T, 0, len(s.items)-1)
	others = append(others, s.items[:idx]...)
	others = append(others, s.items[idx+1:]...)
	if err := s.validate(ctx, next, others); err != nil {
		return zero, zero, err
	}
	s.items[idx] = next
	return before, next, nil
}

// Delete removes the record. Only admins may delete.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	return s.obs.observe(ctx, s.operation("delete"), func(ctx context.Context) error {
		if err := s.authorize(ctx, domain.OpDelete); err != nil {
			return err
		}
		s.mu.Lock()
		idx := s.indexOf(id)
		if idx < 0 {
			s.mu.Unlock()
			return domain.NotFoundError{Entity: s.entity, ID: id}
		}
		removed := s.items[idx]
		s.items = slices.Delete(s.items, idx, idx+1)
		s.mu.Unlock()

		if err := s.backend.Remove(ctx, id); err != nil {
			return s.persistenceFailure(domain.OpDelete, id, err)
		}
		s.audit.Record(ctx, domain.VerbDelete, s.entity, s.detail(domain.VerbDelete, removed))
		return nil
	})
}

// List returns a copy of the collection, newest first.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Get returns the record with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx].Clone(), true
	}
	var zero T
	return zero, false
}

// Len reports the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Load replaces the collection with the backend contents.
func (s *Store[T]) Load(ctx context.Context) error {
	_, err := s.Reload(ctx)
	return err
}

// Reload re-fetches the backend collection, replaces the in-memory state and
// returns the ids whose in-memory copy differed from the stored one.
func (s *Store[T]) Reload(ctx context.Context) ([]string, error) {
	stored, err := s.backend.ListAll(ctx)
	if err != nil {
		return nil, s.persistenceFailure(domain.Operation("load"), "", err)
	}
	newestFirst(stored)

	s.mu.Lock()
	previous := s.items
	s.items = stored
	s.mu.Unlock()

	seen := make(map[string]T, len(previous))
	for _, item := range previous {
		seen[item.Key()] = item
	}
	var changed []string
	for _, item := range stored {
		old, ok := seen[item.Key()]
		delete(seen, item.Key())
		if !ok {
			changed = append(changed, item.Key())
			continue
		}
		if patch, err := domain.Diff(old, item); err != nil || len(patch) > 0 {
			changed = append(changed, item.Key())
		}
	}
	for id := range seen {
		changed = append(changed, id)
	}
	slices.Sort(changed)
	if len(changed) > 0 {
		s.obs.logger.Info("store reconciled", "entity", string(s.entity), "changed", len(changed))
	}
	return changed, nil
}

func (s *Store[T]) authorize(ctx context.Context, op domain.Operation) error {
	var actor *domain.Actor
	if current, ok := s.identity.CurrentActor(ctx); ok {
		actor = &current
	}
	if err := domain.Authorize(actor, op, s.entity); err != nil {
		s.obs.logger.Warn("mutation denied", "entity", string(s.entity), "op", string(op), "error", err.Error())
		return err
	}
	return nil
}

func (s *Store[T]) validate(ctx context.Context, record T, others []T) error {
	if err := domain.Validate(s.entity, record); err != nil {
		return err
	}
	if s.check != nil {
		return s.check(ctx, record, others)
	}
	return nil
}

func (s *Store[T]) persistenceFailure(op domain.Operation, id string, err error) error {
	s.obs.logger.Error("persistence failed", "entity", string(s.entity), "op", string(op), "id", id, "error", err.Error())
	return domain.PersistenceError{Entity: s.entity, Op: op, ID: id, Err: err}
}

func (s *Store[T]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item T) bool { return item.Key() == id })
}

func (s *Store[T]) operation(action string) string {
	return string(s.entity) + "." + action
}

func (s *Store[T]) detail(verb domain.Verb, record T) string {
	return auditDetail(verb, s.entity, record.Label())
}

func auditDetail(verb domain.Verb, entity domain.EntityType, label string) string {
	return verb.Label() + entity.Noun() + ": " + label
}

// newestFirst sorts by primary timestamp, newest first. Ties keep the most
// recently inserted record first.
func newestFirst[T interface{ Created() time.Time }](items []T) {
	slices.Reverse(items)
	slices.SortStableFunc(items, func(a, b T) int { return b.Created().Compare(a.Created()) })
}
