package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an inventory by its ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	var model models.InventoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "inventory with ID %s not found", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate selects the inventory row with FOR UPDATE so that
// concurrent workflow transitions on one inventory serialize. It only holds
// the lock when called inside a transaction; sqlite ignores the clause.
func (r *GormInventoryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	var model models.InventoryModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "inventory with ID %s not found", id)
	}
	return model.ToDomain(), nil
}

// Create inserts a new inventory
func (r *GormInventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	return r.db.WithContext(ctx).Create(models.InventoryModelFromDomain(inv)).Error
}

// SaveBalance writes the ledger columns if the stored version is the one the
// change started from
func (r *GormInventoryRepository) SaveBalance(ctx context.Context, inv *inventory.Inventory) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Updates(map[string]any{
			"current_balance": inv.CurrentBalance,
			"total_balance":   inv.TotalBalance,
			"cash_on_hand":    inv.CashOnHand,
			"version":         inv.Version,
			"updated_at":      inv.UpdatedAt,
		})
	return checkVersioned(result)
}

// Ensure GormInventoryRepository implements InventoryRepository
var _ inventory.InventoryRepository = (*GormInventoryRepository)(nil)
