package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductUnitRepository implements ProductUnitRepository using GORM.
// Reads join the product for its name and unit price.
type GormProductUnitRepository struct {
	db *gorm.DB
}

// NewGormProductUnitRepository creates a new GormProductUnitRepository
func NewGormProductUnitRepository(db *gorm.DB) *GormProductUnitRepository {
	return &GormProductUnitRepository{db: db}
}

func (r *GormProductUnitRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("product_units").
		Select("product_units.*, products.name AS product_name, products.price AS unit_price").
		Joins("JOIN products ON products.id = product_units.product_id")
}

// FindByInventory returns every product unit stocked in an inventory
func (r *GormProductUnitRepository) FindByInventory(ctx context.Context, inventoryID uuid.UUID) ([]inventory.ProductUnit, error) {
	var rows []models.ProductUnitRow
	if err := r.joined(ctx).
		Where("product_units.inventory_id = ?", inventoryID).
		Order("products.name ASC, product_units.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toProductUnits(rows), nil
}

// FindByIDs returns the product units with the given IDs
func (r *GormProductUnitRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.ProductUnit, error) {
	if len(ids) == 0 {
		return []inventory.ProductUnit{}, nil
	}
	var rows []models.ProductUnitRow
	if err := r.joined(ctx).
		Where("product_units.id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toProductUnits(rows), nil
}

// SaveQuantities persists the on-hand quantity of each unit
func (r *GormProductUnitRepository) SaveQuantities(ctx context.Context, units []inventory.ProductUnit) error {
	for i := range units {
		u := &units[i]
		result := r.db.WithContext(ctx).
			Model(&models.ProductUnitModel{}).
			Where("id = ?", u.ID).
			Updates(map[string]any{
				"quantity":   u.Quantity,
				"updated_at": u.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "product unit with ID %s not found", u.ID)
		}
	}
	return nil
}

func toProductUnits(rows []models.ProductUnitRow) []inventory.ProductUnit {
	units := make([]inventory.ProductUnit, len(rows))
	for i := range rows {
		units[i] = rows[i].ToDomain()
	}
	return units
}

// Ensure GormProductUnitRepository implements ProductUnitRepository
var _ inventory.ProductUnitRepository = (*GormProductUnitRepository)(nil)
