// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel, InventoryAggregateModel)
// - inventory.go: inventories, products, product_units
// - expense.go: expenses
// - report.go: reports and their counted products
// - shipment.go: shipments, delivered products and itemized expenses
// - file.go: uploaded file records
//
// Production schemas are created by the SQL migrations; All is used by tests
// that build the schema with AutoMigrate.
package models

// All returns every persistence model in dependency order
func All() []any {
	return []any{
		&InventoryModel{},
		&ProductModel{},
		&ProductUnitModel{},
		&ExpenseModel{},
		&FileModel{},
		&ReportModel{},
		&ReportProductModel{},
		&ShipmentModel{},
		&ShipmentProductModel{},
		&ShipmentExpenseModel{},
	}
}
