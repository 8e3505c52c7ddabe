package domain

import (
	"errors"
	"testing"
)

func TestCanMutateMatrix(t *testing.T) {
	admin := &Actor{ID: "a", Role: RoleAdmin}
	member := &Actor{ID: "m", Role: RoleMember}
	blockedAdmin := &Actor{ID: "b", Role: RoleAdmin, Blocked: true}

	cases := []struct {
		name  string
		actor *Actor
		op    Operation
		want  bool
	}{
		{"nil create", nil, OpCreate, false},
		{"member create", member, OpCreate, true},
		{"member update", member, OpUpdate, false},
		{"member delete", member, OpDelete, false},
		{"admin update", admin, OpUpdate, true},
		{"admin delete", admin, OpDelete, true},
		{"blocked admin create", blockedAdmin, OpCreate, false},
		{"blocked admin delete", blockedAdmin, OpDelete, false},
		{"unknown op", admin, Operation("rename"), false},
	}
	for _, tc := range cases {
		if got := CanMutate(tc.actor, tc.op, EntityStrain); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestAuthorizeReturnsPermissionError(t *testing.T) {
	err := Authorize(&Actor{ID: "m", Role: RoleMember}, OpDelete, EntityMedium)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	var perr PermissionError
	if !errors.As(err, &perr) || perr.ActorID != "m" || perr.Entity != EntityMedium {
		t.Fatalf("unexpected permission error %#v", err)
	}
	if err := Authorize(nil, OpCreate, EntityStrain); err == nil {
		t.Fatalf("expected nil actor to be denied")
	}
	if err := Authorize(&Actor{ID: "a", Role: RoleAdmin}, OpUpdate, EntityStrain); err != nil {
		t.Fatalf("expected admin update to pass, got %v", err)
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	cause := errors.New("disk full")
	perr := PersistenceError{Entity: EntityStrain, Op: OpCreate, ID: "s1", Err: cause}
	if !errors.Is(perr, ErrPersistence) || !errors.Is(perr, cause) {
		t.Fatalf("persistence error should unwrap to sentinel and cause")
	}
	if !errors.Is(NotFoundError{Entity: EntityMember, ID: "x"}, ErrNotFound) {
		t.Fatalf("not found should unwrap")
	}
	if !errors.Is(Invalid(EntityDuty, "date", "taken"), ErrValidation) {
		t.Fatalf("validation should unwrap")
	}
	if !errors.Is(RowError{Row: 3, Reason: "bad"}, ErrImportRow) {
		t.Fatalf("row error should unwrap")
	}
}
