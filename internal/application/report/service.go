package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/expense"
	"github.com/stockflow/backend/internal/domain/file"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const aggregateName = "report"

// ReportService runs the report reconciliation workflow
type ReportService struct {
	reportRepo report.ReportRepository
	txScope    workflow.TransactionScope
	locker     workflow.InventoryLocker
	eventBus   shared.EventPublisher
	recorder   workflow.Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	reportRepo report.ReportRepository,
	txScope workflow.TransactionScope,
	locker workflow.InventoryLocker,
	eventBus shared.EventPublisher,
	recorder workflow.Recorder,
	logger *zap.Logger,
) *ReportService {
	if locker == nil {
		locker = workflow.NoopLocker{}
	}
	if recorder == nil {
		recorder = workflow.NoopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reportRepo: reportRepo,
		txScope:    txScope,
		locker:     locker,
		eventBus:   eventBus,
		recorder:   recorder,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ===================== Query Methods =====================

// GetByID returns a report with its line items. Workers only see reports of
// their own inventory; anything else is reported as not found.
func (s *ReportService) GetByID(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*ReportResponse, error) {
	r, err := s.reportRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(r.InventoryID) {
		return nil, shared.NotFoundf("report with ID %s not found", id)
	}

	response := ToReportResponse(r)
	return &response, nil
}

// List returns a page of reports visible to the actor
func (s *ReportService) List(ctx context.Context, actor workflow.Actor, filter ListFilter) ([]ReportResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.UserID != nil {
		domainFilter.Filters["user_id"] = *filter.UserID
	}
	if actor.IsAdmin() {
		if filter.InventoryID != nil {
			domainFilter.Filters["inventory_id"] = *filter.InventoryID
		}
	} else {
		inventoryID, err := actor.AssignedInventory()
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["inventory_id"] = inventoryID
	}
	domainFilter = domainFilter.Normalize()

	total, err := s.reportRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	reports, err := s.reportRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReportResponse, len(reports))
	for i := range reports {
		responses[i] = ToReportResponse(&reports[i])
	}
	return responses, total, nil
}

// Statistics aggregates line items of reports created since the start of the
// requested period. Workers are limited to their own inventory.
func (s *ReportService) Statistics(ctx context.Context, actor workflow.Actor, filter StatisticsFilter) (*StatisticsResponse, error) {
	duration, err := report.ParseDuration(filter.Duration)
	if err != nil {
		return nil, err
	}
	inventoryID := filter.InventoryID
	if !actor.IsAdmin() {
		own, err := actor.AssignedInventory()
		if err != nil {
			return nil, err
		}
		inventoryID = &own
	}

	since := duration.Since(s.now())
	rows, err := s.reportRepo.FindStatisticRows(ctx, since, inventoryID)
	if err != nil {
		return nil, err
	}

	response := ToStatisticsResponse(duration, since, report.Aggregate(rows))
	return &response, nil
}

// ===================== Command Methods =====================

// Create submits a new stock count for the worker's inventory
func (s *ReportService) Create(ctx context.Context, actor workflow.Actor, req SubmitReportRequest) (*ReportResponse, error) {
	inventoryID, err := actor.AssignedInventory()
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, workflow.ReportLockKey(inventoryID))
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var created *report.Report
	err = s.txScope.Execute(ctx, func(repos workflow.TransactionalRepositories) error {
		inv, err := repos.Inventories().FindByIDForUpdate(ctx, inventoryID)
		if err != nil {
			return err
		}

		active, err := repos.Reports().FindActiveByInventory(ctx, inventoryID)
		switch {
		case err == nil:
			return shared.Conflictf("inventory %s already has an active report %s in status %s", inventoryID, active.ID, active.Status)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		units, err := repos.ProductUnits().FindByInventory(ctx, inventoryID)
		if err != nil {
			return err
		}
		expenses, err := repos.Expenses().FindUnreconciled(ctx, inventoryID)
		if err != nil {
			return err
		}

		figures, items, err := reconcile(inv, units, expenses, req)
		if err != nil {
			return err
		}

		r, err := report.NewReport(inventoryID, actor.UserID, req.Title, req.CurrentMoneyAmount, figures, items)
		if err != nil {
			return err
		}
		if err := repos.Reports().Create(ctx, r); err != nil {
			return err
		}
		if err := linkExpenses(ctx, repos.Expenses(), expenses, r.ID); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report submitted",
		zap.String("report_id", created.ID.String()),
		zap.String("inventory_id", inventoryID.String()),
		zap.String("expected_sold", created.ExpectedSoldMoneyAmount.String()),
		zap.String("broken_rate", created.BrokenRate.String()),
	)
	s.recorder.RecordTransition(ctx, aggregateName, "create", string(created.Status))
	workflow.PublishEvents(ctx, s.eventBus, s.logger, created)

	response := ToReportResponse(created)
	return &response, nil
}

// UpdateRequested resubmits a report the admin sent back. Figures are
// recomputed against the expenses already linked to the report plus any
// recorded since; line items are rewritten as a whole.
func (s *ReportService) UpdateRequested(ctx context.Context, actor workflow.Actor, id uuid.UUID, req SubmitReportRequest) (*ReportResponse, error) {
	header, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.EnsureOwns(header.InventoryID, "reports"); err != nil {
		return nil, err
	}
	if _, err := report.Transitions.Next(header.Status, report.ActionResubmit); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, workflow.ReportLockKey(header.InventoryID))
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var updated *report.Report
	err = s.txScope.Execute(ctx, func(repos workflow.TransactionalRepositories) error {
		inv, err := repos.Inventories().FindByIDForUpdate(ctx, header.InventoryID)
		if err != nil {
			return err
		}
		r, err := repos.Reports().FindByIDWithItems(ctx, id)
		if err != nil {
			return err
		}
		if _, err := report.Transitions.Next(r.Status, report.ActionResubmit); err != nil {
			return err
		}

		units, err := repos.ProductUnits().FindByInventory(ctx, r.InventoryID)
		if err != nil {
			return err
		}
		expenses, err := repos.Expenses().FindUnreconciledOrLinked(ctx, r.InventoryID, r.ID)
		if err != nil {
			return err
		}

		figures, items, err := reconcile(inv, units, expenses, req)
		if err != nil {
			return err
		}
		if err := r.Resubmit(req.Title, req.CurrentMoneyAmount, figures, items); err != nil {
			return err
		}

		if err := repos.Reports().Update(ctx, r); err != nil {
			return err
		}
		if err := repos.Reports().ReplaceItems(ctx, r); err != nil {
			return err
		}
		if err := linkExpenses(ctx, repos.Expenses(), expenses, r.ID); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report resubmitted",
		zap.String("report_id", updated.ID.String()),
		zap.String("inventory_id", updated.InventoryID.String()),
		zap.Int("version", updated.Version),
	)
	s.recorder.RecordTransition(ctx, aggregateName, string(report.ActionResubmit), string(updated.Status))
	workflow.PublishEvents(ctx, s.eventBus, s.logger, updated)

	response := ToReportResponse(updated)
	return &response, nil
}

// RequestChanges sends an in-review report back to its worker
func (s *ReportService) RequestChanges(ctx context.Context, actor workflow.Actor, id uuid.UUID, req ReasonRequest) (*ReportResponse, error) {
	return s.review(ctx, id, report.ActionRequestChanges, func(_ workflow.TransactionalRepositories, r *report.Report) error {
		return r.RequestChanges(actor.UserID, req.ReasonMessage)
	})
}

// AcceptLevelOne approves the count and moves the report to the deposit stage
func (s *ReportService) AcceptLevelOne(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*ReportResponse, error) {
	return s.review(ctx, id, report.ActionAcceptLevelOne, func(_ workflow.TransactionalRepositories, r *report.Report) error {
		return r.AcceptLevelOne(actor.UserID)
	})
}

// SubmitDeposit records the worker's bank deposit and claims the receipt file
func (s *ReportService) SubmitDeposit(ctx context.Context, actor workflow.Actor, id uuid.UUID, req SubmitDepositRequest) (*ReportResponse, error) {
	return s.review(ctx, id, report.ActionSubmitDeposit, func(repos workflow.TransactionalRepositories, r *report.Report) error {
		if err := actor.EnsureOwns(r.InventoryID, "reports"); err != nil {
			return err
		}
		if err := r.SubmitDeposit(req.DepositMoneyAmount, req.DepositImageID); err != nil {
			return err
		}

		f, err := repos.Files().FindByID(ctx, req.DepositImageID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFoundf("deposit image with ID %s not found", req.DepositImageID)
			}
			return err
		}
		if !f.BelongsTo(r.InventoryID) || !f.IsAvailableFor(file.CategoryReportDeposit) {
			return shared.NotFoundf("deposit image with ID %s not found or already used", req.DepositImageID)
		}
		if err := f.MarkUsed(r.ID); err != nil {
			return err
		}
		return repos.Files().Update(ctx, f)
	})
}

// RequestChangesAtDeposit rejects the deposit evidence and returns the report to PENDING_DEPOSIT
func (s *ReportService) RequestChangesAtDeposit(ctx context.Context, actor workflow.Actor, id uuid.UUID, req ReasonRequest) (*ReportResponse, error) {
	return s.review(ctx, id, report.ActionRequestDepositChanges, func(_ workflow.TransactionalRepositories, r *report.Report) error {
		return r.RequestDepositChanges(actor.UserID, req.ReasonMessage)
	})
}

// FinalAccept closes the report and commits its settlement: the inventory
// balance grows by realNet minus deposit, linked expenses become applied and
// the snapshotted product units take their counted quantities.
func (s *ReportService) FinalAccept(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*ReportResponse, error) {
	var (
		inv        *inventory.Inventory
		additional decimal.Decimal
	)
	response, err := s.review(ctx, id, report.ActionFinalAccept, func(repos workflow.TransactionalRepositories, r *report.Report) error {
		var err error
		inv, err = repos.Inventories().FindByIDForUpdate(ctx, r.InventoryID)
		if err != nil {
			return err
		}
		additional, err = r.FinalAccept(actor.UserID)
		if err != nil {
			return err
		}

		inv.ApplySettlement(r.ID, additional)
		if err := repos.Inventories().SaveBalance(ctx, inv); err != nil {
			return err
		}

		applied, err := repos.Expenses().MarkAppliedForReport(ctx, r.ID)
		if err != nil {
			return err
		}
		s.logger.Debug("Expenses applied",
			zap.String("report_id", r.ID.String()),
			zap.Int64("count", applied),
		)

		return applyCountedUnits(ctx, repos.ProductUnits(), r)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report settled",
		zap.String("report_id", response.ID.String()),
		zap.String("inventory_id", inv.ID.String()),
		zap.String("additional_balance", additional.String()),
		zap.String("current_balance", inv.CurrentBalance.String()),
	)
	s.recorder.RecordLedgerDelta(ctx, aggregateName, additional)
	workflow.PublishEvents(ctx, s.eventBus, s.logger, inv)
	return response, nil
}

// review runs one status transition of an existing report inside a
// transaction and persists the header with an optimistic version check.
func (s *ReportService) review(
	ctx context.Context,
	id uuid.UUID,
	action report.Action,
	apply func(repos workflow.TransactionalRepositories, r *report.Report) error,
) (*ReportResponse, error) {
	var changed *report.Report
	err := s.txScope.Execute(ctx, func(repos workflow.TransactionalRepositories) error {
		r, err := repos.Reports().FindByIDWithItems(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(repos, r); err != nil {
			return err
		}
		if err := repos.Reports().Update(ctx, r); err != nil {
			return err
		}
		changed = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report status changed",
		zap.String("report_id", changed.ID.String()),
		zap.String("inventory_id", changed.InventoryID.String()),
		zap.String("action", string(action)),
		zap.String("status", string(changed.Status)),
	)
	s.recorder.RecordTransition(ctx, aggregateName, string(action), string(changed.Status))
	workflow.PublishEvents(ctx, s.eventBus, s.logger, changed)

	response := ToReportResponse(changed)
	return &response, nil
}

// reconcile runs the financial computation against the inventory's current state
func reconcile(inv *inventory.Inventory, units []inventory.ProductUnit, expenses []expense.Expense, req SubmitReportRequest) (report.Figures, []report.LineItem, error) {
	return report.Reconcile(report.ReconcileInput{
		Units:          units,
		Counts:         toCounts(req.Products),
		TotalExpenses:  expense.Total(expenses),
		CurrentMoney:   req.CurrentMoneyAmount,
		OpeningBalance: inv.CurrentBalance,
	})
}

// linkExpenses attaches the reconciled expenses to the report
func linkExpenses(ctx context.Context, repo expense.ExpenseRepository, expenses []expense.Expense, reportID uuid.UUID) error {
	if len(expenses) == 0 {
		return nil
	}
	for i := range expenses {
		if err := expenses[i].LinkTo(reportID); err != nil {
			return err
		}
	}
	return repo.LinkToReport(ctx, expense.IDs(expenses), reportID)
}

// applyCountedUnits settles the stock count on every snapshotted product unit
func applyCountedUnits(ctx context.Context, repo inventory.ProductUnitRepository, r *report.Report) error {
	counted := r.CountedItems()
	if len(counted) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(counted))
	for id := range counted {
		ids = append(ids, id)
	}
	units, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range units {
		item := counted[units[i].ID]
		if err := units[i].ApplyCount(item.OriginalQuantity, item.Quantity); err != nil {
			return err
		}
	}
	return repo.SaveQuantities(ctx, units)
}
