// Package testdb builds in-memory sqlite databases with the full schema and
// small seeding helpers for repository and service tests.
package testdb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/infrastructure/persistence"
	"github.com/stockflow/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New opens a fresh in-memory database and migrates every model
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := persistence.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.DB.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// Inventory inserts an inventory with the given current balance
func Inventory(t testing.TB, db *gorm.DB, name string, balance decimal.Decimal) uuid.UUID {
	t.Helper()

	now := time.Now().UTC()
	m := &models.InventoryModel{
		AggregateModel: models.AggregateModel{
			BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Version:   1,
		},
		Name:           name,
		CurrentBalance: balance,
		TotalBalance:   balance,
		CashOnHand:     decimal.Zero,
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// ProductUnit inserts a product and a unit of it stocked in the inventory
func ProductUnit(t testing.TB, db *gorm.DB, inventoryID uuid.UUID, name string, price, quantity, piecesPerPallet decimal.Decimal) uuid.UUID {
	t.Helper()

	now := time.Now().UTC()
	product := &models.ProductModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
		Price:     price,
	}
	require.NoError(t, db.Create(product).Error)

	unit := &models.ProductUnitModel{
		BaseModel:       models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		InventoryID:     inventoryID,
		ProductID:       product.ID,
		Quantity:        quantity,
		PiecesPerPallet: piecesPerPallet,
	}
	require.NoError(t, db.Create(unit).Error)
	return unit.ID
}

// UnitQuantity reads back the stored quantity of a product unit
func UnitQuantity(t testing.TB, db *gorm.DB, unitID uuid.UUID) decimal.Decimal {
	t.Helper()

	var m models.ProductUnitModel
	require.NoError(t, db.First(&m, "id = ?", unitID).Error)
	return m.Quantity
}

// Balance reads back the ledger of an inventory
func Balance(t testing.TB, db *gorm.DB, inventoryID uuid.UUID) (current, total decimal.Decimal) {
	t.Helper()

	var m models.InventoryModel
	require.NoError(t, db.First(&m, "id = ?", inventoryID).Error)
	return m.CurrentBalance, m.TotalBalance
}
