// Package core hosts the entity stores, the audit log, the actor directory and
// the duty roster, wired together by Service.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dell121212/laberaer/internal/infra/persistence/memory"
	"github.com/dell121212/laberaer/pkg/domain"
)

// Service owns one store per entity type plus the shared audit log and
// identity. Construct it once per process and pass it to callers.
type Service struct {
	Identity *Identity
	Audit    *AuditLog
	Actors   *Directory
	Strains  *Store[domain.Strain]
	Members  *Store[domain.Member]
	Duty     *Roster
	Media    *Store[domain.Medium]
	Theses   *Store[domain.Thesis]

	backends domain.Backends
	obs      observers
}

// ServiceOption customizes NewService.
type ServiceOption func(*observers)

// WithClock overrides the time source.
func WithClock(clock Clock) ServiceOption {
	return func(o *observers) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *observers) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics MetricsRecorder) ServiceOption {
	return func(o *observers) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *observers) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// NewService wires the stores to backends. Missing backends fall back to
// in-memory collections.
func NewService(backends domain.Backends, opts ...ServiceOption) *Service {
	obs := defaultObservers()
	for _, opt := range opts {
		opt(&obs)
	}
	backends = withMemoryFallback(backends)

	identity := NewIdentity()
	audit := newAuditLog(backends.Audit, identity, obs)
	svc := &Service{
		Identity: identity,
		Audit:    audit,
		Actors:   newDirectory(newStore(domain.EntityActor, backends.Actors, identity, audit, obs)),
		Strains:  newStore(domain.EntityStrain, backends.Strains, identity, audit, obs),
		Members:  newStore(domain.EntityMember, backends.Members, identity, audit, obs),
		Duty:     newRoster(newStore(domain.EntityDuty, backends.Duties, identity, audit, obs), obs.clock),
		Media:    newStore(domain.EntityMedium, backends.Media, identity, audit, obs),
		Theses:   newStore(domain.EntityThesis, backends.Theses, identity, audit, obs),
		backends: backends,
		obs:      obs,
	}
	identity.SetLookup(svc.Actors.Get)
	svc.Media.SetCheck(svc.strainsExist)
	return svc
}

// NewInMemoryService builds a service over fresh in-memory backends.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(memory.NewBackends(), opts...)
}

func withMemoryFallback(b domain.Backends) domain.Backends {
	mem := memory.NewBackends()
	if b.Strains == nil {
		b.Strains = mem.Strains
	}
	if b.Members == nil {
		b.Members = mem.Members
	}
	if b.Duties == nil {
		b.Duties = mem.Duties
	}
	if b.Media == nil {
		b.Media = mem.Media
	}
	if b.Theses == nil {
		b.Theses = mem.Theses
	}
	if b.Actors == nil {
		b.Actors = mem.Actors
	}
	if b.Audit == nil {
		b.Audit = mem.Audit
	}
	return b
}

// strainsExist rejects media referencing unknown strains. Deleting a strain
// later does not cascade; the medium keeps the dangling id.
func (s *Service) strainsExist(_ context.Context, m domain.Medium, _ []domain.Medium) error {
	var missing []string
	for _, id := range m.SuitableStrainIDs {
		if _, ok := s.Strains.Get(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.Invalid(domain.EntityMedium, "suitableStrainIds", fmt.Sprintf("unknown strain ids %v", missing))
	}
	return nil
}

// Load hydrates every store and the audit log from the backends.
func (s *Service) Load(ctx context.Context) error {
	errs := []error{
		s.Actors.Load(ctx),
		s.Strains.Load(ctx),
		s.Members.Load(ctx),
		s.Duty.Load(ctx),
		s.Media.Load(ctx),
		s.Theses.Load(ctx),
		s.Audit.Load(ctx),
	}
	return errors.Join(errs...)
}

// SignIn makes the registered actor with id the session actor.
func (s *Service) SignIn(id string) (domain.Actor, error) {
	actor, ok := s.Actors.Get(id)
	if !ok {
		return domain.Actor{}, domain.NotFoundError{Entity: domain.EntityActor, ID: id}
	}
	s.Identity.SignIn(actor)
	s.obs.logger.Debug("signed in", "id", actor.ID, "role", string(actor.Role))
	return actor, nil
}

// RecordAudit appends an audit entry for operations outside the stores.
func (s *Service) RecordAudit(ctx context.Context, verb domain.Verb, module domain.EntityType, detail string) domain.AuditEntry {
	return s.Audit.Record(ctx, verb, module, detail)
}

// Now returns the service clock time.
func (s *Service) Now() time.Time { return s.obs.clock.Now() }

// Logger returns the configured logger.
func (s *Service) Logger() Logger { return s.obs.logger }

// Close releases backend resources.
func (s *Service) Close() error { return s.backends.Shutdown() }
