// Package memory provides the in-process persistence backend used for tests
// and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/dell121212/laberaer/pkg/domain"
)

// Collection is a concurrency-safe, insertion-ordered bucket of records.
type Collection[T domain.Record[T]] struct {
	mu     sync.RWMutex
	entity domain.EntityType
	order  []string
	items  map[string]T
}

// NewCollection constructs an empty collection for the given entity type.
func NewCollection[T domain.Record[T]](entity domain.EntityType) *Collection[T] {
	return &Collection[T]{entity: entity, items: make(map[string]T)}
}

// Insert stores a copy of record. Inserting an existing id replaces the stored value.
func (c *Collection[T]) Insert(_ context.Context, record T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := record.Key()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = record.Clone()
	return record.Clone(), nil
}

// Patch applies a JSON merge-patch to the stored record.
func (c *Collection[T]) Patch(_ context.Context, id string, fields map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.items[id]
	if !ok {
		return domain.NotFoundError{Entity: c.entity, ID: id}
	}
	patched, err := domain.ApplyPatch(current, fields)
	if err != nil {
		return err
	}
	c.items[id] = patched
	return nil
}

// Remove deletes the record.
func (c *Collection[T]) Remove(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return domain.NotFoundError{Entity: c.entity, ID: id}
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListAll returns copies of every record in insertion order.
func (c *Collection[T]) ListAll(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].Clone())
	}
	return out, nil
}

// Len reports the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// NewBackends returns a fresh set of in-memory backends.
func NewBackends() domain.Backends {
	return domain.Backends{
		Strains: NewCollection[domain.Strain](domain.EntityStrain),
		Members: NewCollection[domain.Member](domain.EntityMember),
		Duties:  NewCollection[domain.DutySchedule](domain.EntityDuty),
		Media:   NewCollection[domain.Medium](domain.EntityMedium),
		Theses:  NewCollection[domain.Thesis](domain.EntityThesis),
		Actors:  NewCollection[domain.Actor](domain.EntityActor),
		Audit:   NewCollection[domain.AuditEntry](domain.EntityAudit),
	}
}
