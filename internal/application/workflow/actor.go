package workflow

import (
	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// Role of an authenticated caller
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleWorker Role = "WORKER"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleWorker
}

// Actor is the authenticated caller as resolved from the access token.
// Workers are assigned to exactly one inventory; admins to none.
type Actor struct {
	UserID      uuid.UUID
	Role        Role
	InventoryID uuid.UUID
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AssignedInventory returns the worker's inventory or a FORBIDDEN error
// when the caller is not attached to one
func (a Actor) AssignedInventory() (uuid.UUID, error) {
	if a.InventoryID == uuid.Nil {
		return uuid.Nil, shared.Forbiddenf("user %s is not assigned to an inventory", a.UserID)
	}
	return a.InventoryID, nil
}

// CanAccess reports whether the actor may see records of an inventory
func (a Actor) CanAccess(inventoryID uuid.UUID) bool {
	return a.IsAdmin() || (a.InventoryID != uuid.Nil && a.InventoryID == inventoryID)
}

// EnsureOwns rejects an actor acting on another inventory's record
func (a Actor) EnsureOwns(inventoryID uuid.UUID, what string) error {
	if a.InventoryID == uuid.Nil || a.InventoryID != inventoryID {
		return shared.Forbiddenf("you can only act on %s from your inventory", what)
	}
	return nil
}
