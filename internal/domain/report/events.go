package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/domain/shared"
)

// AggregateTypeReport is the aggregate type for report events
const AggregateTypeReport = "Report"

// Event type constants
const (
	EventTypeReportSubmitted               = "ReportSubmitted"
	EventTypeReportResubmitted             = "ReportResubmitted"
	EventTypeReportChangesRequested        = "ReportChangesRequested"
	EventTypeReportLevelOneAccepted        = "ReportLevelOneAccepted"
	EventTypeReportDepositSubmitted        = "ReportDepositSubmitted"
	EventTypeReportDepositChangesRequested = "ReportDepositChangesRequested"
	EventTypeReportAccepted                = "ReportAccepted"
	EventTypeReportSettled                 = "ReportSettled" // carries the ledger delta of an accepted report
)

var actionEventTypes = map[Action]string{
	ActionResubmit:              EventTypeReportResubmitted,
	ActionRequestChanges:        EventTypeReportChangesRequested,
	ActionAcceptLevelOne:        EventTypeReportLevelOneAccepted,
	ActionSubmitDeposit:         EventTypeReportDepositSubmitted,
	ActionRequestDepositChanges: EventTypeReportDepositChangesRequested,
	ActionFinalAccept:           EventTypeReportAccepted,
}

// ReportSubmittedEvent is raised when a worker submits or resubmits a count
type ReportSubmittedEvent struct {
	shared.BaseDomainEvent
	WorkerID                uuid.UUID       `json:"worker_id"`
	Resubmission            bool            `json:"resubmission"`
	CurrentMoneyAmount      decimal.Decimal `json:"current_money_amount"`
	ExpectedSoldMoneyAmount decimal.Decimal `json:"expected_sold_money_amount"`
	BrokenMoneyAmount       decimal.Decimal `json:"broken_money_amount"`
	BrokenRate              decimal.Decimal `json:"broken_rate"`
	ItemCount               int             `json:"item_count"`
}

// NewReportSubmittedEvent creates a ReportSubmittedEvent
func NewReportSubmittedEvent(r *Report, resubmission bool) *ReportSubmittedEvent {
	return &ReportSubmittedEvent{
		BaseDomainEvent:         shared.NewBaseDomainEvent(EventTypeReportSubmitted, AggregateTypeReport, r.ID, r.InventoryID),
		WorkerID:                r.CreatedBy,
		Resubmission:            resubmission,
		CurrentMoneyAmount:      r.CurrentMoneyAmount,
		ExpectedSoldMoneyAmount: r.ExpectedSoldMoneyAmount,
		BrokenMoneyAmount:       r.BrokenMoneyAmount,
		BrokenRate:              r.BrokenRate,
		ItemCount:               len(r.Items),
	}
}

// EventType returns the event type name
func (e *ReportSubmittedEvent) EventType() string {
	return EventTypeReportSubmitted
}

// ReportStatusChangedEvent is raised on every workflow transition
type ReportStatusChangedEvent struct {
	shared.BaseDomainEvent
	Action     Action    `json:"action"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	Reason     string    `json:"reason,omitempty"`
}

// NewReportStatusChangedEvent creates a ReportStatusChangedEvent typed after the action
func NewReportStatusChangedEvent(r *Report, action Action, from Status, actor uuid.UUID, reason string) *ReportStatusChangedEvent {
	eventType, ok := actionEventTypes[action]
	if !ok {
		eventType = string(action)
	}
	return &ReportStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReport, r.ID, r.InventoryID),
		Action:          action,
		FromStatus:      from,
		ToStatus:        r.Status,
		ActorID:         actor,
		Reason:          reason,
	}
}

// ReportAcceptedEvent carries the settlement committed on final acceptance
type ReportAcceptedEvent struct {
	shared.BaseDomainEvent
	RealNetMoneyAmount decimal.Decimal `json:"real_net_money_amount"`
	DepositMoneyAmount decimal.Decimal `json:"deposit_money_amount"`
	AdditionalBalance  decimal.Decimal `json:"additional_balance"`
}

// NewReportAcceptedEvent creates a ReportAcceptedEvent
func NewReportAcceptedEvent(r *Report, additional decimal.Decimal) *ReportAcceptedEvent {
	deposit := decimal.Zero
	if r.DepositMoneyAmount != nil {
		deposit = *r.DepositMoneyAmount
	}
	return &ReportAcceptedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeReportSettled, AggregateTypeReport, r.ID, r.InventoryID),
		RealNetMoneyAmount: r.RealNetMoneyAmount,
		DepositMoneyAmount: deposit,
		AdditionalBalance:  additional,
	}
}

// EventType returns the event type name
func (e *ReportAcceptedEvent) EventType() string {
	return EventTypeReportSettled
}
