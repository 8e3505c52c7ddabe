package domain

// Operation is a mutating store operation subject to authorization.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// CanMutate is the single authorization policy consulted by every store.
// Blocked or missing actors are denied everything; any other actor may
// create; only admins may update or delete.
func CanMutate(actor *Actor, op Operation, _ EntityType) bool {
	if actor == nil || actor.Blocked {
		return false
	}
	switch op {
	case OpCreate:
		return true
	case OpUpdate, OpDelete:
		return actor.Role == RoleAdmin
	default:
		return false
	}
}

// Authorize returns a PermissionError when CanMutate denies the operation.
func Authorize(actor *Actor, op Operation, entity EntityType) error {
	if CanMutate(actor, op, entity) {
		return nil
	}
	var id string
	if actor != nil {
		id = actor.ID
	}
	return PermissionError{ActorID: id, Op: op, Entity: entity}
}
