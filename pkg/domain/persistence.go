package domain

import "context"

// Backend is the durable counterpart of one entity store. Implementations
// must be safe for concurrent use.
type Backend[T any] interface {
	// Insert stores a new record and returns it as persisted.
	Insert(ctx context.Context, record T) (T, error)
	// Patch merges fields into the stored record using JSON merge-patch
	// semantics. A nil value removes the key. A missing id yields NotFoundError.
	Patch(ctx context.Context, id string, fields map[string]any) error
	// Remove deletes the record. A missing id yields NotFoundError.
	Remove(ctx context.Context, id string) error
	// ListAll returns every stored record in insertion order.
	ListAll(ctx context.Context) ([]T, error)
}

// Bucket names shared by every backend.
const (
	BucketStrains = "strains"
	BucketMembers = "members"
	BucketDuties  = "duty_schedules"
	BucketMedia   = "media"
	BucketTheses  = "theses"
	BucketActors  = "actors"
	BucketAudit   = "audit_log"
)

// Buckets lists every bucket in creation order.
var Buckets = []string{BucketStrains, BucketMembers, BucketDuties, BucketMedia, BucketTheses, BucketActors, BucketAudit}

// Backends groups the typed backends of one storage driver.
type Backends struct {
	Strains Backend[Strain]
	Members Backend[Member]
	Duties  Backend[DutySchedule]
	Media   Backend[Medium]
	Theses  Backend[Thesis]
	Actors  Backend[Actor]
	Audit   Backend[AuditEntry]

	// Close releases driver resources. It may be nil.
	Close func() error
}

// Shutdown calls Close when set.
func (b Backends) Shutdown() error {
	if b.Close == nil {
		return nil
	}
	return b.Close()
}
