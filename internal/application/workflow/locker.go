package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ReleaseFunc releases a held lock. It is safe to call once.
type ReleaseFunc func(ctx context.Context)

// InventoryLocker serializes workflow operations per inventory across
// processes. Lock fails with shared.ErrLockNotObtained instead of waiting
// when another holder keeps the key past the configured wait.
type InventoryLocker interface {
	Lock(ctx context.Context, key string) (ReleaseFunc, error)
}

// ReportLockKey is the lock key guarding report creation for an inventory
func ReportLockKey(inventoryID uuid.UUID) string {
	return fmt.Sprintf("workflow:report:%s", inventoryID)
}

// ShipmentLockKey is the lock key guarding shipment creation for an inventory
func ShipmentLockKey(inventoryID uuid.UUID) string {
	return fmt.Sprintf("workflow:shipment:%s", inventoryID)
}

// NoopLocker never blocks; the database row lock still applies
type NoopLocker struct{}

// Lock returns immediately
func (NoopLocker) Lock(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) {}, nil
}
