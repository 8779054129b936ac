package inventory

import (
	"context"

	"github.com/google/uuid"
)

// InventoryRepository defines persistence for inventories and their ledger
type InventoryRepository interface {
	// FindByID finds an inventory by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Inventory, error)

	// FindByIDForUpdate loads the inventory and holds a row lock on it until
	// the surrounding transaction ends. Workflows call it before checking the
	// single-active-record rule so concurrent requests for one inventory serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Inventory, error)

	// Create inserts a new inventory
	Create(ctx context.Context, inv *Inventory) error

	// SaveBalance persists the ledger columns of an inventory with an
	// optimistic version check
	SaveBalance(ctx context.Context, inv *Inventory) error
}

// ProductUnitRepository defines persistence for stocked product units
type ProductUnitRepository interface {
	// FindByInventory returns every product unit stocked in an inventory
	FindByInventory(ctx context.Context, inventoryID uuid.UUID) ([]ProductUnit, error)

	// FindByIDs returns the product units with the given IDs; missing IDs are omitted
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductUnit, error)

	// SaveQuantities persists the on-hand quantity of each unit
	SaveQuantities(ctx context.Context, units []ProductUnit) error
}
