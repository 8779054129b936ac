package shipment

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
)

// ShipmentRepository defines persistence for shipments, their line items and itemized expenses
type ShipmentRepository interface {
	// FindByID loads a shipment with line items and itemized expenses
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindAll lists shipments; supported filter keys are status, inventory_id and title
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindActiveByInventory returns the inventory's open shipment or shared.ErrNotFound
	FindActiveByInventory(ctx context.Context, inventoryID uuid.UUID) (*Shipment, error)

	// Create inserts a new shipment with its itemized expenses
	Create(ctx context.Context, s *Shipment) error

	// Update persists the header with an optimistic version check
	Update(ctx context.Context, s *Shipment) error

	// ReplaceItems deletes and reinserts the delivered line items
	ReplaceItems(ctx context.Context, s *Shipment) error

	// ReplaceExpenses deletes and reinserts the itemized expenses
	ReplaceExpenses(ctx context.Context, s *Shipment) error
}
