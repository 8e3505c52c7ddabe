package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Callers match with errors.Is; the typed errors below carry detail.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrPersistence      = errors.New("persistence failure")
	ErrImportRow        = errors.New("import row rejected")
)

// PermissionError is returned when the authorization policy denies an operation.
type PermissionError struct {
	ActorID string
	Op      Operation
	Entity  EntityType
}

func (e PermissionError) Error() string {
	actor := e.ActorID
	if actor == "" {
		actor = "anonymous"
	}
	return fmt.Sprintf("%s may not %s %s: %v", actor, e.Op, e.Entity, ErrPermissionDenied)
}

func (e PermissionError) Unwrap() error { return ErrPermissionDenied }

// NotFoundError is returned when an update or delete targets a missing id.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }

// FieldError names one failed field constraint.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError is returned when a record violates a required-field or
// store-boundary invariant. It is raised before any mutation.
type ValidationError struct {
	Entity EntityType
	Fields []FieldError
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a single-field ValidationError.
func Invalid(entity EntityType, field, reason string) ValidationError {
	return ValidationError{Entity: entity, Fields: []FieldError{{Field: field, Reason: reason}}}
}

// PersistenceError reports a failed backend round trip after the optimistic
// in-memory mutation was applied. The mutation is not rolled back.
type PersistenceError struct {
	Entity EntityType
	Op     Operation
	ID     string
	Err    error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// RowError is one rejected row of a bulk import. Row is the 1-based data row
// index (the header row is not counted).
type RowError struct {
	Row    int    `json:"rowIndex"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e RowError) Unwrap() error { return ErrImportRow }
