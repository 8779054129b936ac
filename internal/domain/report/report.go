package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// LineItem is one product unit snapshotted into a report at submission time.
// Line items are rewritten as a whole on every resubmission.
type LineItem struct {
	ID               uuid.UUID
	ReportID         uuid.UUID
	ProductUnitID    uuid.UUID
	ProductName      string
	OriginalQuantity decimal.Decimal // stored quantity before the count
	Quantity         decimal.Decimal // counted quantity
	PiecesPerPallet  decimal.Decimal
	Pallets          decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	SoldUnits        decimal.Decimal
	SoldUnitsAmount  decimal.Decimal
}

// Report is a worker's stock count and cash reconciliation for one inventory.
// CreatedBy is the submitting worker.
type Report struct {
	shared.InventoryAggregateRoot
	Title              string
	Status             Status
	CurrentMoneyAmount decimal.Decimal
	Figures
	DepositMoneyAmount *decimal.Decimal
	DepositImageID     *uuid.UUID
	ReasonMessage      string
	ReviewedBy         *uuid.UUID
	AcceptedAt         *time.Time
	Items              []LineItem
}

// NewReport creates a report in IN_REVIEW from a reconciled submission
func NewReport(inventoryID, workerID uuid.UUID, title string, currentMoney decimal.Decimal, figures Figures, items []LineItem) (*Report, error) {
	if inventoryID == uuid.Nil {
		return nil, shared.InvalidInputf("inventory ID cannot be empty")
	}
	if workerID == uuid.Nil {
		return nil, shared.InvalidInputf("worker ID cannot be empty")
	}
	r := &Report{
		InventoryAggregateRoot: shared.NewInventoryAggregateRoot(inventoryID, workerID),
		Title:                  strings.TrimSpace(title),
		Status:                 StatusInReview,
		CurrentMoneyAmount:     currentMoney,
		Figures:                figures,
	}
	r.setItems(items)
	r.AddDomainEvent(NewReportSubmittedEvent(r, false))
	return r, nil
}

func (r *Report) setItems(items []LineItem) {
	r.Items = make([]LineItem, len(items))
	for i, item := range items {
		item.ReportID = r.ID
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		r.Items[i] = item
	}
}

// transition moves the report along the state machine
func (r *Report) transition(action Action, actor uuid.UUID, reason string) error {
	from := r.Status
	to, err := Transitions.Next(from, action)
	if err != nil {
		return err
	}
	r.Status = to
	r.IncrementVersion()
	r.AddDomainEvent(NewReportStatusChangedEvent(r, action, from, actor, reason))
	return nil
}

// IsActive reports whether the report still counts as the inventory's open report
func (r *Report) IsActive() bool {
	return r.Status.IsActive()
}

// Resubmit replaces the count and figures after an admin requested changes
func (r *Report) Resubmit(title string, currentMoney decimal.Decimal, figures Figures, items []LineItem) error {
	if err := r.transition(ActionResubmit, r.CreatedBy, ""); err != nil {
		return err
	}
	if t := strings.TrimSpace(title); t != "" {
		r.Title = t
	}
	r.CurrentMoneyAmount = currentMoney
	r.Figures = figures
	r.setItems(items)
	r.AddDomainEvent(NewReportSubmittedEvent(r, true))
	return nil
}

// RequestChanges sends an in-review report back to the worker
func (r *Report) RequestChanges(adminID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.InvalidInputf("reason message is required")
	}
	if err := r.transition(ActionRequestChanges, adminID, reason); err != nil {
		return err
	}
	r.ReasonMessage = reason
	r.ReviewedBy = &adminID
	return nil
}

// AcceptLevelOne approves the count and asks the worker for a deposit
func (r *Report) AcceptLevelOne(adminID uuid.UUID) error {
	if err := r.transition(ActionAcceptLevelOne, adminID, ""); err != nil {
		return err
	}
	r.ReviewedBy = &adminID
	return nil
}

// SubmitDeposit records the banked amount and the receipt image
func (r *Report) SubmitDeposit(amount decimal.Decimal, imageID uuid.UUID) error {
	if amount.IsNegative() {
		return shared.InvalidInputf("deposit money amount cannot be negative")
	}
	if amount.GreaterThan(r.CurrentMoneyAmount) {
		return shared.InvalidInputf("deposit money amount %s cannot be greater than the report's current money amount %s",
			amount.String(), r.CurrentMoneyAmount.String())
	}
	if err := r.transition(ActionSubmitDeposit, r.CreatedBy, ""); err != nil {
		return err
	}
	r.DepositMoneyAmount = &amount
	r.DepositImageID = &imageID
	return nil
}

// RequestDepositChanges rejects the submitted deposit evidence
func (r *Report) RequestDepositChanges(adminID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.InvalidInputf("reason message is required")
	}
	if err := r.transition(ActionRequestDepositChanges, adminID, reason); err != nil {
		return err
	}
	r.ReasonMessage = reason
	r.ReviewedBy = &adminID
	return nil
}

// AdditionalBalance is the amount the report adds to the inventory ledger:
// real net money minus what was deposited.
func (r *Report) AdditionalBalance() decimal.Decimal {
	deposit := decimal.Zero
	if r.DepositMoneyAmount != nil {
		deposit = *r.DepositMoneyAmount
	}
	return r.RealNetMoneyAmount.Sub(deposit)
}

// FinalAccept closes the report. The caller must commit AdditionalBalance to
// the inventory ledger in the same transaction.
func (r *Report) FinalAccept(adminID uuid.UUID) (decimal.Decimal, error) {
	if err := r.transition(ActionFinalAccept, adminID, ""); err != nil {
		return decimal.Zero, err
	}
	now := time.Now().UTC()
	r.AcceptedAt = &now
	r.ReviewedBy = &adminID
	additional := r.AdditionalBalance()
	r.AddDomainEvent(NewReportAcceptedEvent(r, additional))
	return additional, nil
}

// CountedItems indexes the snapshotted line items by product unit
func (r *Report) CountedItems() map[uuid.UUID]LineItem {
	m := make(map[uuid.UUID]LineItem, len(r.Items))
	for _, item := range r.Items {
		m[item.ProductUnitID] = item
	}
	return m
}
