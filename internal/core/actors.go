package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/dell121212/laberaer/pkg/domain"
)

// Default administrator seeded into an empty directory.
const (
	DefaultAdminID   = "admin-001"
	DefaultAdminName = "admin"
)

// Directory manages registered actors. Role and blocked changes require a
// non-blocked admin and are audited under the user module.
type Directory struct {
	store *Store[domain.Actor]
}

func newDirectory(store *Store[domain.Actor]) *Directory {
	store.SetCheck(uniqueDisplayName)
	return &Directory{store: store}
}

func uniqueDisplayName(_ context.Context, candidate domain.Actor, others []domain.Actor) error {
	for _, other := range others {
		if strings.EqualFold(other.DisplayName, candidate.DisplayName) {
			return domain.Invalid(domain.EntityActor, "displayName", fmt.Sprintf("%q is already registered", candidate.DisplayName))
		}
	}
	return nil
}

// Register creates a member actor. Registration needs no signed-in actor.
func (d *Directory) Register(ctx context.Context, displayName string) (domain.Actor, error) {
	return d.store.insert(ctx, domain.Actor{DisplayName: strings.TrimSpace(displayName), Role: domain.RoleMember})
}

// EnsureAdmin seeds the default administrator when neither an admin nor the
// default admin id exists, and returns the actor found or seeded. The seed is
// validated like any registration, so a member already holding the default
// admin name blocks it.
func (d *Directory) EnsureAdmin(ctx context.Context) (domain.Actor, error) {
	s := d.store
	now := s.obs.clock.Now()
	admin := domain.Actor{DisplayName: DefaultAdminName, Role: domain.RoleAdmin}.Stamp(DefaultAdminID, now, now)

	s.mu.Lock()
	for _, a := range s.items {
		if a.IsAdmin() || a.ID == DefaultAdminID {
			s.mu.Unlock()
			return a.Clone(), nil
		}
	}
	if err := s.validate(ctx, admin, s.items); err != nil {
		s.mu.Unlock()
		return domain.Actor{}, err
	}
	s.items = append([]domain.Actor{admin}, s.items...)
	s.mu.Unlock()

	if _, err := s.backend.Insert(ctx, admin); err != nil {
		return admin, s.persistenceFailure(domain.OpCreate, admin.ID, err)
	}
	s.obs.logger.Info("default admin seeded", "id", admin.ID)
	return admin, nil
}

// SetRole changes an actor's role.
func (d *Directory) SetRole(ctx context.Context, id string, role domain.Role) (domain.Actor, error) {
	return d.store.Update(ctx, id, func(a *domain.Actor) error {
		a.Role = role
		return nil
	})
}

// SetBlocked blocks or unblocks an actor.
func (d *Directory) SetBlocked(ctx context.Context, id string, blocked bool) (domain.Actor, error) {
	return d.store.Update(ctx, id, func(a *domain.Actor) error {
		a.Blocked = blocked
		return nil
	})
}

// Remove deletes an actor.
func (d *Directory) Remove(ctx context.Context, id string) error {
	return d.store.Delete(ctx, id)
}

// Get returns the actor with id.
func (d *Directory) Get(id string) (domain.Actor, bool) { return d.store.Get(id) }

// List returns every actor, newest first.
func (d *Directory) List() []domain.Actor { return d.store.List() }

// FindByName returns the actor with the display name, ignoring case.
func (d *Directory) FindByName(name string) (domain.Actor, bool) {
	for _, a := range d.store.List() {
		if strings.EqualFold(a.DisplayName, strings.TrimSpace(name)) {
			return a, true
		}
	}
	return domain.Actor{}, false
}

// Load hydrates the directory from its backend.
func (d *Directory) Load(ctx context.Context) error { return d.store.Load(ctx) }
