package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
)

// BalanceResponse is an inventory's money ledger
type BalanceResponse struct {
	InventoryID    uuid.UUID       `json:"inventoryId"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	CashOnHand     decimal.Decimal `json:"cashOnHand"`
	Version        int             `json:"version"`
}

// ProductUnitResponse is a stocked product unit
type ProductUnitResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryID     uuid.UUID       `json:"inventoryId"`
	ProductID       uuid.UUID       `json:"productId"`
	ProductName     string          `json:"productName"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        decimal.Decimal `json:"quantity"`
	PiecesPerPallet decimal.Decimal `json:"piecesPerPallet"`
	Pallets         decimal.Decimal `json:"pallets"`
	StockValue      decimal.Decimal `json:"stockValue"`
}

// LedgerService exposes the read side of inventories: balances and product units
type LedgerService struct {
	inventoryRepo   inventory.InventoryRepository
	productUnitRepo inventory.ProductUnitRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(inventoryRepo inventory.InventoryRepository, productUnitRepo inventory.ProductUnitRepository) *LedgerService {
	return &LedgerService{
		inventoryRepo:   inventoryRepo,
		productUnitRepo: productUnitRepo,
	}
}

// GetBalance returns the ledger of an inventory the actor can access
func (s *LedgerService) GetBalance(ctx context.Context, actor workflow.Actor, inventoryID uuid.UUID) (*BalanceResponse, error) {
	if !actor.CanAccess(inventoryID) {
		return nil, shared.Forbiddenf("you can only view your own inventory")
	}
	inv, err := s.inventoryRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		InventoryID:    inv.ID,
		Name:           inv.Name,
		CurrentBalance: inv.CurrentBalance,
		TotalBalance:   inv.TotalBalance,
		CashOnHand:     inv.CashOnHand,
		Version:        inv.Version,
	}, nil
}

// ListProductUnits returns every product unit stocked in an inventory. This is
// the set a report submission must count in full.
func (s *LedgerService) ListProductUnits(ctx context.Context, actor workflow.Actor, inventoryID uuid.UUID) ([]ProductUnitResponse, error) {
	if !actor.CanAccess(inventoryID) {
		return nil, shared.Forbiddenf("you can only view your own inventory")
	}
	if _, err := s.inventoryRepo.FindByID(ctx, inventoryID); err != nil {
		return nil, err
	}
	units, err := s.productUnitRepo.FindByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductUnitResponse, len(units))
	for i := range units {
		u := &units[i]
		responses[i] = ProductUnitResponse{
			ID:              u.ID,
			InventoryID:     u.InventoryID,
			ProductID:       u.ProductID,
			ProductName:     u.ProductName,
			UnitPrice:       u.UnitPrice,
			Quantity:        u.Quantity,
			PiecesPerPallet: u.PiecesPerPallet,
			Pallets:         u.Pallets(u.Quantity),
			StockValue:      u.UnitPrice.Mul(u.Quantity),
		}
	}
	return responses, nil
}
