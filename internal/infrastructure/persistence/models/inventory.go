package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/inventory"
)

// InventoryModel is the persistence model for the Inventory aggregate and its ledger.
type InventoryModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalBalance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CashOnHand     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryModel) TableName() string {
	return "inventories"
}

// ToDomain converts the persistence model to a domain Inventory
func (m *InventoryModel) ToDomain() *inventory.Inventory {
	return &inventory.Inventory{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		CurrentBalance:    m.CurrentBalance,
		TotalBalance:      m.TotalBalance,
		CashOnHand:        m.CashOnHand,
	}
}

// FromDomain populates the persistence model from a domain Inventory
func (m *InventoryModel) FromDomain(i *inventory.Inventory) {
	m.setRoot(i.BaseAggregateRoot)
	m.Name = i.Name
	m.CurrentBalance = i.CurrentBalance
	m.TotalBalance = i.TotalBalance
	m.CashOnHand = i.CashOnHand
}

// InventoryModelFromDomain creates a new persistence model from a domain Inventory
func InventoryModelFromDomain(i *inventory.Inventory) *InventoryModel {
	m := &InventoryModel{}
	m.FromDomain(i)
	return m
}

// ProductModel is a catalog product. Product units reference it for name and price.
type ProductModel struct {
	BaseModel
	Name  string          `gorm:"type:varchar(200);not null"`
	Price decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductUnitModel is the persistence model for a product stocked in one inventory.
type ProductUnitModel struct {
	BaseModel
	InventoryID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_units_inventory_product,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_units_inventory_product,priority:2"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PiecesPerPallet decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductUnitModel) TableName() string {
	return "product_units"
}

// ProductUnitRow is a product unit joined with its product
type ProductUnitRow struct {
	ProductUnitModel
	ProductName string
	UnitPrice   decimal.Decimal
}

// ToDomain converts the joined row to a domain ProductUnit
func (r *ProductUnitRow) ToDomain() inventory.ProductUnit {
	return inventory.ProductUnit{
		BaseEntity:      r.entity(),
		InventoryID:     r.InventoryID,
		ProductID:       r.ProductID,
		ProductName:     r.ProductName,
		UnitPrice:       r.UnitPrice,
		Quantity:        r.Quantity,
		PiecesPerPallet: r.PiecesPerPallet,
	}
}
