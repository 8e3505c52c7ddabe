package core

import (
	"context"
	"sync"

	"github.com/dell121212/laberaer/pkg/domain"
)

// ActorProvider resolves the actor performing an operation.
type ActorProvider interface {
	CurrentActor(ctx context.Context) (domain.Actor, bool)
}

type actorCtxKey struct{}

// WithActor returns a context carrying actor. Context actors take precedence
// over the signed-in session actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	if ctx == nil {
		return domain.Actor{}, false
	}
	actor, ok := ctx.Value(actorCtxKey{}).(domain.Actor)
	return actor, ok
}

// Identity holds the signed-in session actor. When a lookup is configured the
// actor is re-read on every call so role and blocked changes apply at once,
// and an actor missing from the directory is treated as signed out.
type Identity struct {
	mu      sync.RWMutex
	current *domain.Actor
	lookup  func(id string) (domain.Actor, bool)
}

// NewIdentity constructs an empty session.
func NewIdentity() *Identity { return &Identity{} }

// SetLookup installs the directory lookup used to refresh the session actor.
func (i *Identity) SetLookup(fn func(id string) (domain.Actor, bool)) {
	i.mu.Lock()
	i.lookup = fn
	i.mu.Unlock()
}

// SignIn makes actor the session actor.
func (i *Identity) SignIn(actor domain.Actor) {
	i.mu.Lock()
	i.current = &actor
	i.mu.Unlock()
}

// SignOut clears the session actor.
func (i *Identity) SignOut() {
	i.mu.Lock()
	i.current = nil
	i.mu.Unlock()
}

// CurrentActor implements ActorProvider.
func (i *Identity) CurrentActor(ctx context.Context) (domain.Actor, bool) {
	if actor, ok := ActorFromContext(ctx); ok {
		return i.refresh(actor)
	}
	i.mu.RLock()
	current := i.current
	i.mu.RUnlock()
	if current == nil {
		return domain.Actor{}, false
	}
	return i.refresh(*current)
}

func (i *Identity) refresh(actor domain.Actor) (domain.Actor, bool) {
	i.mu.RLock()
	lookup := i.lookup
	i.mu.RUnlock()
	if lookup == nil {
		return actor, true
	}
	latest, ok := lookup(actor.ID)
	if !ok {
		return domain.Actor{}, false
	}
	return latest, true
}
