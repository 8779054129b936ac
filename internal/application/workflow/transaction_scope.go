package workflow

import (
	"context"

	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/file"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shipment"
)

// TransactionScope runs workflow transitions atomically.
// If fn returns an error every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to every repository a workflow
// transition touches. All of them share one database transaction.
type TransactionalRepositories interface {
	Inventories() inventory.InventoryRepository
	ProductUnits() inventory.ProductUnitRepository
	Expenses() expense.ExpenseRepository
	Reports() report.ReportRepository
	Shipments() shipment.ShipmentRepository
	Files() file.FileRepository
}

// Repositories is a plain set of repositories. It doubles as a
// TransactionScope that runs without a transaction, for tests.
type Repositories struct {
	InventoryRepo   inventory.InventoryRepository
	ProductUnitRepo inventory.ProductUnitRepository
	ExpenseRepo     expense.ExpenseRepository
	ReportRepo      report.ReportRepository
	ShipmentRepo    shipment.ShipmentRepository
	FileRepo        file.FileRepository
}

// Execute runs fn against the repositories directly
func (r *Repositories) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(r)
}

func (r *Repositories) Inventories() inventory.InventoryRepository    { return r.InventoryRepo }
func (r *Repositories) ProductUnits() inventory.ProductUnitRepository { return r.ProductUnitRepo }
func (r *Repositories) Expenses() expense.ExpenseRepository           { return r.ExpenseRepo }
func (r *Repositories) Reports() report.ReportRepository              { return r.ReportRepo }
func (r *Repositories) Shipments() shipment.ShipmentRepository        { return r.ShipmentRepo }
func (r *Repositories) Files() file.FileRepository                    { return r.FileRepo }

var (
	_ TransactionScope          = (*Repositories)(nil)
	_ TransactionalRepositories = (*Repositories)(nil)
)
