package auth

import (
	"github.com/google/uuid"

	"tasktracker/internal/model"
)

// Identity is the acting principal for one request, reconstructed from a
// verified session token. It carries no more than the token does.
type Identity struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// CanAccess reports whether the identity may read or mutate a task assigned
// to ownerID. Admins pass unconditionally.
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsAdmin() || i.ID == ownerID
}
