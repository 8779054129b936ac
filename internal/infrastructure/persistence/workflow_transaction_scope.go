package persistence

import (
	"context"

	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/file"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shipment"
	"gorm.io/gorm"
)

// GormTransactionScope implements workflow.TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos workflow.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Inventories returns the inventory repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Inventories() inventory.InventoryRepository {
	return NewGormInventoryRepository(r.tx)
}

// ProductUnits returns the product unit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductUnits() inventory.ProductUnitRepository {
	return NewGormProductUnitRepository(r.tx)
}

// Expenses returns the expense repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Expenses() expense.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

// Reports returns the report repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Reports() report.ReportRepository {
	return NewGormReportRepository(r.tx)
}

// Shipments returns the shipment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Shipments() shipment.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// Files returns the file repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Files() file.FileRepository {
	return NewGormFileRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ workflow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ workflow.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
