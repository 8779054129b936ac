package shipment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

const aggregateName = "shipment"

// ShipmentService runs the shipment replenishment workflow
type ShipmentService struct {
	shipmentRepo shipment.ShipmentRepository
	txScope      workflow.TransactionScope
	locker       workflow.InventoryLocker
	eventBus     shared.EventPublisher
	recorder     workflow.Recorder
	logger       *zap.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipmentRepo shipment.ShipmentRepository,
	txScope workflow.TransactionScope,
	locker workflow.InventoryLocker,
	eventBus shared.EventPublisher,
	recorder workflow.Recorder,
	logger *zap.Logger,
) *ShipmentService {
	if locker == nil {
		locker = workflow.NoopLocker{}
	}
	if recorder == nil {
		recorder = workflow.NoopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{
		shipmentRepo: shipmentRepo,
		txScope:      txScope,
		locker:       locker,
		eventBus:     eventBus,
		recorder:     recorder,
		logger:       logger,
	}
}

// ===================== Query Methods =====================

// GetByID returns a shipment with its line items and itemized expenses
func (s *ShipmentService) GetByID(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.shipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(sh.InventoryID) {
		return nil, shared.NotFoundf("shipment with ID %s not found", id)
	}

	response := ToShipmentResponse(sh)
	return &response, nil
}

// List returns a page of shipments visible to the actor
func (s *ShipmentService) List(ctx context.Context, actor workflow.Actor, filter ListFilter) ([]ShipmentResponse, int64, error) {
	domainFilter, err := s.scopedFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.shipmentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	shipments, err := s.shipmentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ShipmentResponse, len(shipments))
	for i := range shipments {
		responses[i] = ToShipmentResponse(&shipments[i])
	}
	return responses, total, nil
}

// Count returns the number of shipments matching the filter
func (s *ShipmentService) Count(ctx context.Context, actor workflow.Actor, filter ListFilter) (*CountResponse, error) {
	domainFilter, err := s.scopedFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.shipmentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: total}, nil
}

func (s *ShipmentService) scopedFilter(actor workflow.Actor, filter ListFilter) (shared.Filter, error) {
	if !actor.IsAdmin() {
		inventoryID, err := actor.AssignedInventory()
		if err != nil {
			return shared.Filter{}, err
		}
		filter.InventoryID = &inventoryID
	}
	return filter.toDomain(), nil
}

// ===================== Command Methods =====================

// Create plans a shipment for an inventory that has none in flight
func (s *ShipmentService) Create(ctx context.Context, actor workflow.Actor, req CreateShipmentRequest) (*ShipmentResponse, error) {
	expenses, err := toItemizedExpenses(req.ShipmentExpenses)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, workflow.ShipmentLockKey(req.InventoryID))
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	var created *shipment.Shipment
	err = s.txScope.Execute(ctx, func(repos workflow.TransactionalRepositories) error {
		if _, err := repos.Inventories().FindByIDForUpdate(ctx, req.InventoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFoundf("inventory with ID %s not found", req.InventoryID)
			}
			return err
		}

		active, err := repos.Shipments().FindActiveByInventory(ctx, req.InventoryID)
		switch {
		case err == nil:
			return shared.Conflictf("inventory %s already has an active shipment %s in status %s", req.InventoryID, active.ID, active.Status)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		sh, err := shipment.NewShipment(req.InventoryID, actor.UserID, req.Title, expenses)
		if err != nil {
			return err
		}
		if err := repos.Shipments().Create(ctx, sh); err != nil {
			return err
		}
		created = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipment created",
		zap.String("shipment_id", created.ID.String()),
		zap.String("inventory_id", created.InventoryID.String()),
		zap.Int("itemized_expenses", len(created.Expenses)),
	)
	s.recorder.RecordTransition(ctx, aggregateName, "create", string(created.Status))
	workflow.PublishEvents(ctx, s.eventBus, s.logger, created)

	response := ToShipmentResponse(created)
	return &response, nil
}

// Update retitles a shipment and replaces its itemized expenses when given
func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, req UpdateShipmentRequest) (*ShipmentResponse, error) {
	expenses, err := toItemizedExpenses(req.ShipmentExpenses)
	if err != nil {
		return nil, err
	}

	var updated *shipment.Shipment
	err = s.txScope.Execute(ctx, func(repos workflow.TransactionalRepositories) error {
		sh, err := repos.Shipments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := sh.Update(req.Title, expenses); err != nil {
			return err
		}
		if err := repos.Shipments().Update(ctx, sh); err != nil {
			return err
		}
		if expenses != nil {
			if err := repos.Shipments().ReplaceExpenses(ctx, sh); err != nil {
				return err
			}
		}
		updated = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToShipmentResponse(updated)
	return &response, nil
}

// SubmitForReview records the delivered products and the three expense totals
func (s *ShipmentService) SubmitForReview(ctx context.Context, actor workflow.Actor, id uuid.UUID, req SubmitForReviewRequest) (*ShipmentResponse, error) {
	deliveries, ids := toDeliveries(req.Products)
	costs := shipment.Costs{
		ShipmentCard:     req.ShipmentCardExpenses,
		ClarkInstallment: req.ClarkInstallmentExpenses,
		Other:            req.OtherExpenses,
	}

	return s.transition(ctx, id, shipment.ActionSubmitForReview, func(repos workflow.TransactionalRepositories, sh *shipment.Shipment) error {
		if err := actor.EnsureOwns(sh.InventoryID, "shipments"); err != nil {
			return err
		}
		if _, err := shipment.Transitions.Next(sh.Status, shipment.ActionSubmitForReview); err != nil {
			return err
		}

		units, err := repos.ProductUnits().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		items, err := shipment.BuildLineItems(sh.InventoryID, units, deliveries)
		if err != nil {
			return err
		}
		if err := sh.SubmitForReview(actor.UserID, items, costs); err != nil {
			return err
		}
		return repos.Shipments().ReplaceItems(ctx, sh)
	})
}

// RequestUpdate returns a submitted shipment to the worker
func (s *ShipmentService) RequestUpdate(ctx context.Context, actor workflow.Actor, id uuid.UUID, req RequestUpdateRequest) (*ShipmentResponse, error) {
	return s.transition(ctx, id, shipment.ActionRequestUpdate, func(_ workflow.TransactionalRepositories, sh *shipment.Shipment) error {
		return sh.RequestUpdate(actor.UserID, req.ReviewMessage)
	})
}

// Accept closes the shipment: delivered quantities are added to the product
// units and the three expense totals are deducted from the inventory balance.
func (s *ShipmentService) Accept(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*ShipmentResponse, error) {
	var inv *inventory.Inventory
	response, err := s.transition(ctx, id, shipment.ActionAccept, func(repos workflow.TransactionalRepositories, sh *shipment.Shipment) error {
		var err error
		inv, err = repos.Inventories().FindByIDForUpdate(ctx, sh.InventoryID)
		if err != nil {
			return err
		}
		total, err := sh.Accept(actor.UserID)
		if err != nil {
			return err
		}

		if err := addDelivered(ctx, repos.ProductUnits(), sh.Items); err != nil {
			return err
		}
		if err := inv.DeductShipmentExpenses(sh.ID, total); err != nil {
			return err
		}
		return repos.Inventories().SaveBalance(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipment settled",
		zap.String("shipment_id", response.ID.String()),
		zap.String("inventory_id", inv.ID.String()),
		zap.String("deducted", response.TotalExpenses.String()),
		zap.String("current_balance", inv.CurrentBalance.String()),
	)
	s.recorder.RecordLedgerDelta(ctx, aggregateName, response.TotalExpenses.Neg())
	workflow.PublishEvents(ctx, s.eventBus, s.logger, inv)
	return response, nil
}

func (s *ShipmentService) transition(
	ctx context.Context,
	id uuid.UUID,
	action shipment.Action,
	apply func(repos workflow.TransactionalRepositories, sh *shipment.Shipment) error,
) (*ShipmentResponse, error) {
	var changed *shipment.Shipment
	err := s.txScope.Execute(ctx, func(repos workflow.TransactionalRepositories) error {
		sh, err := repos.Shipments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(repos, sh); err != nil {
			return err
		}
		if err := repos.Shipments().Update(ctx, sh); err != nil {
			return err
		}
		changed = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipment status changed",
		zap.String("shipment_id", changed.ID.String()),
		zap.String("inventory_id", changed.InventoryID.String()),
		zap.String("action", string(action)),
		zap.String("status", string(changed.Status)),
	)
	s.recorder.RecordTransition(ctx, aggregateName, string(action), string(changed.Status))
	workflow.PublishEvents(ctx, s.eventBus, s.logger, changed)

	response := ToShipmentResponse(changed)
	return &response, nil
}

// addDelivered increments each delivered product unit by its line item quantity
func addDelivered(ctx context.Context, repo inventory.ProductUnitRepository, items []shipment.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductUnitID
	}
	units, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	idx := inventory.IndexByID(units)
	for _, item := range items {
		u, ok := idx[item.ProductUnitID]
		if !ok {
			return shared.NotFoundf("product unit with ID %s not found", item.ProductUnitID)
		}
		if err := u.AddDelivered(item.Quantity); err != nil {
			return err
		}
	}
	return repo.SaveQuantities(ctx, units)
}
