// Package domain defines the persistent records, authorization policy, error
// taxonomy and persistence contracts shared by every laberaer component.
package domain

import (
	"fmt"
	"time"
)

// EntityType identifies the type of record held by a store. It doubles as the
// audit module name.
type EntityType string

// Supported entity type identifiers used for stores, audit modules and persistence buckets.
const (
	EntityStrain EntityType = "strain"
	EntityMember EntityType = "member"
	EntityDuty   EntityType = "duty"
	EntityMedium EntityType = "medium"
	EntityThesis EntityType = "thesis"
	// EntityActor identifies registered actors managed through the directory.
	EntityActor EntityType = "user"
	// EntityAudit identifies the audit log pseudo-entity.
	EntityAudit EntityType = "audit"
)

var entityNouns = map[EntityType]string{
	EntityStrain: "菌种",
	EntityMember: "成员",
	EntityDuty:   "值日安排",
	EntityMedium: "培养基",
	EntityThesis: "论文",
	EntityActor:  "用户",
	EntityAudit:  "日志",
}

// Noun returns the localized noun used in audit details.
func (e EntityType) Noun() string {
	if noun, ok := entityNouns[e]; ok {
		return noun
	}
	return string(e)
}

// ParseEntityType accepts singular or plural identifiers ("strain", "strains", "media").
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "strain", "strains":
		return EntityStrain, nil
	case "member", "members":
		return EntityMember, nil
	case "duty", "duties", "dutySchedules", "duty_schedules":
		return EntityDuty, nil
	case "medium", "media":
		return EntityMedium, nil
	case "thesis", "theses":
		return EntityThesis, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// Role enumerates actor roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Actor is an authenticated user of the system.
type Actor struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName" validate:"required"`
	Role        Role      `json:"role" validate:"required,oneof=admin member"`
	Blocked     bool      `json:"blocked"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// TransferReminder schedules periodic subculturing of a preserved strain.
type TransferReminder struct {
	Enabled          bool       `json:"enabled"`
	IntervalDays     int        `json:"intervalDays" validate:"required_if=Enabled true,gte=0"`
	LastTransferDate *time.Time `json:"lastTransferDate,omitempty"`
}

// NextDue returns the date the next transfer is due. The zero time is returned
// when the reminder is disabled or no transfer has been recorded yet.
func (r TransferReminder) NextDue() time.Time {
	if !r.Enabled || r.IntervalDays <= 0 || r.LastTransferDate == nil {
		return time.Time{}
	}
	return r.LastTransferDate.AddDate(0, 0, r.IntervalDays)
}

// Strain is a preserved biological strain.
type Strain struct {
	ID                      string            `json:"id"`
	Name                    string            `json:"name" validate:"required"`
	ScientificName          string            `json:"scientificName" validate:"required"`
	Kind                    string            `json:"kind"`
	Description             string            `json:"description"`
	Source                  string            `json:"source" validate:"required"`
	PreservationMethod      string            `json:"preservationMethod" validate:"required"`
	PreservationTemperature string            `json:"preservationTemperature" validate:"required"`
	Location                string            `json:"location" validate:"required"`
	AddedBy                 string            `json:"addedBy"`
	TransferReminder        *TransferReminder `json:"transferReminder,omitempty"`
	AddedAt                 time.Time         `json:"addedAt"`
	UpdatedAt               time.Time         `json:"updatedAt"`
}

// DefaultStrainKind is the type given to strains stored without one.
const DefaultStrainKind = "fungus"

// Member is a team member listed on the roster.
type Member struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" validate:"required"`
	Group         string    `json:"group" validate:"required"`
	Phone         string    `json:"phone" validate:"required"`
	Grade         string    `json:"grade,omitempty"`
	Class         string    `json:"class,omitempty"`
	ThesisContent string    `json:"thesisContent,omitempty"`
	OtherInfo     string    `json:"otherInfo,omitempty"`
	JoinedAt      time.Time `json:"joinedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DutyStatus is the lifecycle state of a duty schedule.
type DutyStatus string

const (
	DutyPending   DutyStatus = "pending"
	DutyCompleted DutyStatus = "completed"
	DutySkipped   DutyStatus = "skipped"
)

// DutySchedule assigns members and tasks to one calendar day.
type DutySchedule struct {
	ID        string     `json:"id"`
	Date      Date       `json:"date" validate:"required,datetime=2006-01-02"`
	Members   []string   `json:"members" validate:"required,min=1,dive,required"`
	Tasks     []string   `json:"tasks" validate:"required,min=1,dive,required"`
	Status    DutyStatus `json:"status" validate:"required,oneof=pending completed skipped"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// HasMember reports whether name is assigned to the schedule.
func (d DutySchedule) HasMember(name string) bool {
	for _, m := range d.Members {
		if m == name {
			return true
		}
	}
	return false
}

// MediumKind distinguishes liquid and solid media.
type MediumKind string

const (
	MediumLiquid MediumKind = "liquid"
	MediumSolid  MediumKind = "solid"
)

// CultivationParams records recommended growth conditions.
type CultivationParams struct {
	Temperature string `json:"temperature"`
	Time        string `json:"time"`
	PH          string `json:"ph,omitempty"`
	Other       string `json:"other,omitempty"`
}

// Medium is a culture medium recipe.
type Medium struct {
	ID                string            `json:"id"`
	Name              string            `json:"name" validate:"required"`
	Kind              MediumKind        `json:"kind" validate:"required,oneof=liquid solid"`
	SuitableStrainIDs []string          `json:"suitableStrainIds" validate:"required,min=1,dive,required"`
	Formula           string            `json:"formula"`
	CultivationParams CultivationParams `json:"cultivationParams"`
	RecommendedBy     string            `json:"recommendedBy"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Thesis is a graduation thesis kept for reference.
type Thesis struct {
	ID           string    `json:"id"`
	Title        string    `json:"title" validate:"required"`
	Author       string    `json:"author" validate:"required"`
	Grade        string    `json:"grade"`
	Class        string    `json:"class"`
	OtherContent string    `json:"otherContent"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Verb names the kind of change an audit entry records.
type Verb string

const (
	VerbAdd      Verb = "add"
	VerbEdit     Verb = "edit"
	VerbDelete   Verb = "delete"
	VerbImport   Verb = "import"
	VerbExport   Verb = "export"
	VerbDownload Verb = "download"
)

var verbLabels = map[Verb]string{
	VerbAdd:      "添加",
	VerbEdit:     "编辑",
	VerbDelete:   "删除",
	VerbImport:   "导入",
	VerbExport:   "导出",
	VerbDownload: "下载",
}

// Label returns the localized verb.
func (v Verb) Label() string {
	if l, ok := verbLabels[v]; ok {
		return l
	}
	return string(v)
}

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID        string     `json:"id"`
	ActorID   string     `json:"actorId"`
	ActorName string     `json:"actorName"`
	Verb      Verb       `json:"verb"`
	Module    EntityType `json:"module"`
	Detail    string     `json:"detail"`
	Timestamp time.Time  `json:"timestamp"`
}
