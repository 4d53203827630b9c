package user

import "github.com/google/uuid"

// Actor is the authenticated caller behind a command.
type Actor struct {
	ID     uuid.UUID
	Role   Role
	UnitID *uuid.UUID
}

func NewActor(id uuid.UUID, role Role, unitID *uuid.UUID) Actor {
	return Actor{ID: id, Role: role, UnitID: unitID}
}

func (a Actor) IsStaff() bool {
	return a.Role.AtLeast(RoleStaff)
}

// CanAccess holds for staff and for the resident who owns the record.
func (a Actor) CanAccess(residentID uuid.UUID) bool {
	return a.IsStaff() || a.ID == residentID
}

func (a Actor) IDPtr() *uuid.UUID {
	id := a.ID
	return &id
}
