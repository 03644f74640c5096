package usecase

import (
	"car-rental/internal/data/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated caller, resolved by the auth middleware.
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

func (a Actor) IsOwner() bool {
	return a.Role == entity.RoleOwner || a.Role == entity.RoleAdmin
}
