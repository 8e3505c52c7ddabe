package core

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dell121212/laberaer/pkg/domain"
)

// Placeholders recorded when no actor is signed in.
const (
	UnknownActorID   = "unknown"
	UnknownActorName = "Unknown User"
)

// AuditLog is the append-only, newest-first record of successful changes.
type AuditLog struct {
	mu       sync.RWMutex
	entries  []domain.AuditEntry
	backend  domain.Backend[domain.AuditEntry]
	identity ActorProvider
	obs      observers
}

func newAuditLog(backend domain.Backend[domain.AuditEntry], identity ActorProvider, obs observers) *AuditLog {
	return &AuditLog{backend: backend, identity: identity, obs: obs}
}

// Record appends an entry attributed to the current actor and persists it.
// Persistence failures are logged; the in-memory entry is kept.
func (a *AuditLog) Record(ctx context.Context, verb domain.Verb, module domain.EntityType, detail string) domain.AuditEntry {
	entry := domain.AuditEntry{
		ActorID:   UnknownActorID,
		ActorName: UnknownActorName,
		Verb:      verb,
		Module:    module,
		Detail:    detail,
	}
	if actor, ok := a.identity.CurrentActor(ctx); ok {
		entry.ActorID, entry.ActorName = actor.ID, actor.DisplayName
	}
	now := a.obs.clock.Now()
	entry = entry.Stamp(uuid.NewString(), now, now)

	a.mu.Lock()
	a.entries = append([]domain.AuditEntry{entry}, a.entries...)
	a.mu.Unlock()

	if a.backend != nil {
		if _, err := a.backend.Insert(ctx, entry); err != nil {
			a.obs.logger.Warn("audit entry not persisted", "id", entry.ID, "verb", string(verb), "module", string(module), "error", err.Error())
		}
	}
	return entry
}

// Entries returns a copy of the log, newest first.
func (a *AuditLog) Entries() []domain.AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.AuditEntry(nil), a.entries...)
}

// Head returns the newest entry.
func (a *AuditLog) Head() (domain.AuditEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.entries) == 0 {
		return domain.AuditEntry{}, false
	}
	return a.entries[0], true
}

// Filter returns entries matching module and verb; empty values match all.
func (a *AuditLog) Filter(module domain.EntityType, verb domain.Verb) []domain.AuditEntry {
	return a.Query(AuditQuery{Module: module, Verb: verb})
}

// AuditQuery selects audit entries. Zero fields match everything.
type AuditQuery struct {
	Module domain.EntityType
	Verb   domain.Verb
	// Actor matches the actor id exactly or the display name ignoring case.
	Actor string
}

func (q AuditQuery) matches(e domain.AuditEntry) bool {
	if q.Module != "" && e.Module != q.Module {
		return false
	}
	if q.Verb != "" && e.Verb != q.Verb {
		return false
	}
	if q.Actor != "" && e.ActorID != q.Actor && !strings.EqualFold(e.ActorName, q.Actor) {
		return false
	}
	return true
}

// Query returns entries matching q, newest first.
func (a *AuditLog) Query(q AuditQuery) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range a.Entries() {
		if q.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Load replaces the in-memory log with the persisted entries.
func (a *AuditLog) Load(ctx context.Context) error {
	if a.backend == nil {
		return nil
	}
	entries, err := a.backend.ListAll(ctx)
	if err != nil {
		return err
	}
	newestFirst(entries)
	a.mu.Lock()
	a.entries = entries
	a.mu.Unlock()
	return nil
}
