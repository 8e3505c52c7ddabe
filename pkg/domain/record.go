package domain

import "time"

// Record is implemented by every value stored in an entity store. Methods
// return modified copies; records are never mutated in place.
type Record[T any] interface {
	// Entity identifies the entity type of the record.
	Entity() EntityType
	// Key returns the record identifier.
	Key() string
	// Label is the human readable name used in audit details.
	Label() string
	// Stamp returns a copy carrying the identifier and timestamps.
	Stamp(id string, created, updated time.Time) T
	// Created returns the primary timestamp used for newest-first ordering.
	Created() time.Time
	// Clone returns a deep copy.
	Clone() T
}

var (
	_ Record[Actor]        = Actor{}
	_ Record[Strain]       = Strain{}
	_ Record[Member]       = Member{}
	_ Record[DutySchedule] = DutySchedule{}
	_ Record[Medium]       = Medium{}
	_ Record[Thesis]       = Thesis{}
	_ Record[AuditEntry]   = AuditEntry{}
)

func (a Actor) Entity() EntityType { return EntityActor }
func (a Actor) Key() string        { return a.ID }
func (a Actor) Label() string      { return a.DisplayName }
func (a Actor) Created() time.Time { return a.CreatedAt }
func (a Actor) Clone() Actor       { return a }
func (a Actor) Stamp(id string, created, updated time.Time) Actor {
	a.ID, a.CreatedAt, a.UpdatedAt = id, created, updated
	return a
}

func (s Strain) Entity() EntityType { return EntityStrain }
func (s Strain) Key() string        { return s.ID }
func (s Strain) Label() string      { return s.Name }
func (s Strain) Created() time.Time { return s.AddedAt }
// Stamp also fills an empty Kind with DefaultStrainKind, so stored strains
// always carry a type.
func (s Strain) Stamp(id string, created, updated time.Time) Strain {
	s = s.Clone()
	s.ID, s.AddedAt, s.UpdatedAt = id, created, updated
	if s.Kind == "" {
		s.Kind = DefaultStrainKind
	}
	return s
}

func (s Strain) Clone() Strain {
	cp := s
	if s.TransferReminder != nil {
		r := *s.TransferReminder
		if r.LastTransferDate != nil {
			last := *r.LastTransferDate
			r.LastTransferDate = &last
		}
		cp.TransferReminder = &r
	}
	return cp
}

func (m Member) Entity() EntityType { return EntityMember }
func (m Member) Key() string        { return m.ID }
func (m Member) Label() string      { return m.Name }
func (m Member) Created() time.Time { return m.JoinedAt }
func (m Member) Clone() Member      { return m }
func (m Member) Stamp(id string, created, updated time.Time) Member {
	m.ID, m.JoinedAt, m.UpdatedAt = id, created, updated
	return m
}

func (d DutySchedule) Entity() EntityType { return EntityDuty }
func (d DutySchedule) Key() string        { return d.ID }
func (d DutySchedule) Label() string      { return string(d.Date) }
func (d DutySchedule) Created() time.Time { return d.CreatedAt }
func (d DutySchedule) Stamp(id string, created, updated time.Time) DutySchedule {
	d = d.Clone()
	d.ID, d.CreatedAt, d.UpdatedAt = id, created, updated
	return d
}

func (d DutySchedule) Clone() DutySchedule {
	cp := d
	cp.Members = append([]string(nil), d.Members...)
	cp.Tasks = append([]string(nil), d.Tasks...)
	return cp
}

func (m Medium) Entity() EntityType { return EntityMedium }
func (m Medium) Key() string        { return m.ID }
func (m Medium) Label() string      { return m.Name }
func (m Medium) Created() time.Time { return m.CreatedAt }
func (m Medium) Stamp(id string, created, updated time.Time) Medium {
	m = m.Clone()
	m.ID, m.CreatedAt, m.UpdatedAt = id, created, updated
	return m
}

func (m Medium) Clone() Medium {
	cp := m
	cp.SuitableStrainIDs = append([]string(nil), m.SuitableStrainIDs...)
	return cp
}

func (t Thesis) Entity() EntityType { return EntityThesis }
func (t Thesis) Key() string        { return t.ID }
func (t Thesis) Label() string      { return t.Title }
func (t Thesis) Created() time.Time { return t.CreatedAt }
func (t Thesis) Clone() Thesis      { return t }
func (t Thesis) Stamp(id string, created, updated time.Time) Thesis {
	t.ID, t.CreatedAt, t.UpdatedAt = id, created, updated
	return t
}

func (e AuditEntry) Entity() EntityType { return EntityAudit }
func (e AuditEntry) Key() string        { return e.ID }
func (e AuditEntry) Label() string      { return e.Detail }
func (e AuditEntry) Created() time.Time { return e.Timestamp }
func (e AuditEntry) Clone() AuditEntry  { return e }

// Stamp sets the identifier and timestamp; audit entries have no update time.
func (e AuditEntry) Stamp(id string, created, _ time.Time) AuditEntry {
	e.ID, e.Timestamp = id, created
	return e
}
