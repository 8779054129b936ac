package notification

import (
	"context"
	"fmt"

	"github.com/stockflow/backend/internal/domain/inventory"
	"github.com/stockflow/backend/internal/domain/report"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/domain/shipment"
	"go.uber.org/zap"
)

// Audience selects who should be told about a workflow change
type Audience string

const (
	AudienceAdmins  Audience = "ADMINS"
	AudienceWorkers Audience = "WORKERS"
)

// WorkflowNotification is a message about a report or shipment changing state
type WorkflowNotification struct {
	InventoryID   string   `json:"inventory_id"`
	AggregateType string   `json:"aggregate_type"`
	AggregateID   string   `json:"aggregate_id"`
	EventType     string   `json:"event_type"`
	Status        string   `json:"status"`
	Reason        string   `json:"reason,omitempty"`
	Audience      Audience `json:"audience"`
}

// Notifier delivers workflow notifications.
// Implementations can support different channels (push, email, in-app).
type Notifier interface {
	Notify(ctx context.Context, notification WorkflowNotification) error
}

// WorkflowEventHandler turns report and shipment transitions into notifications
// for the side that has to act next
type WorkflowEventHandler struct {
	logger   *zap.Logger
	notifier Notifier
}

// NewWorkflowEventHandler creates a new handler for workflow events
func NewWorkflowEventHandler(logger *zap.Logger) *WorkflowEventHandler {
	return &WorkflowEventHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending notifications
func (h *WorkflowEventHandler) WithNotifier(notifier Notifier) *WorkflowEventHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *WorkflowEventHandler) EventTypes() []string {
	return []string{
		report.EventTypeReportSubmitted,
		report.EventTypeReportResubmitted,
		report.EventTypeReportChangesRequested,
		report.EventTypeReportLevelOneAccepted,
		report.EventTypeReportDepositSubmitted,
		report.EventTypeReportDepositChangesRequested,
		report.EventTypeReportAccepted,
		shipment.EventTypeShipmentCreated,
		shipment.EventTypeShipmentSubmitted,
		shipment.EventTypeShipmentUpdateRequested,
		shipment.EventTypeShipmentAccepted,
		inventory.EventTypeBalanceChanged,
	}
}

// Handle processes a workflow event
func (h *WorkflowEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	notification, err := toNotification(event)
	if err != nil {
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	if notification == nil {
		return nil
	}

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.Notify(ctx, *notification); err != nil {
		// delivery failures never fail the transition that raised the event
		h.logger.Error("failed to send workflow notification",
			zap.String("aggregate_id", notification.AggregateID),
			zap.String("event_type", notification.EventType),
			zap.Error(err),
		)
	}
	return nil
}

func toNotification(event shared.DomainEvent) (*WorkflowNotification, error) {
	n := &WorkflowNotification{
		InventoryID:   event.InventoryID().String(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID().String(),
		EventType:     event.EventType(),
	}

	switch e := event.(type) {
	case *report.ReportSubmittedEvent:
		n.Status = string(report.StatusInReview)
		n.Audience = AudienceAdmins
	case *report.ReportStatusChangedEvent:
		n.Status = string(e.ToStatus)
		n.Reason = e.Reason
		n.Audience = reportAudience(e.ToStatus)
	case *shipment.ShipmentCreatedEvent:
		n.Status = string(shipment.StatusPending)
		n.Audience = AudienceWorkers
	case *shipment.ShipmentStatusChangedEvent:
		n.Status = string(e.ToStatus)
		n.Reason = e.Reason
		n.Audience = AudienceWorkers
		if e.ToStatus == shipment.StatusPendingReview {
			n.Audience = AudienceAdmins
		}
	case *inventory.BalanceChangedEvent:
		// ledger movements are logged by the notifier only
		n.Status = string(e.Reason)
		n.Audience = AudienceAdmins
	default:
		return nil, fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return n, nil
}

func reportAudience(to report.Status) Audience {
	switch to {
	case report.StatusInReview, report.StatusInPendingDepositReview:
		return AudienceAdmins
	default:
		return AudienceWorkers
	}
}

// Ensure WorkflowEventHandler implements shared.EventHandler
var _ shared.EventHandler = (*WorkflowEventHandler)(nil)

// LoggingNotifier is a notifier that only logs notifications
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a new logging notifier
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{
		logger: logger,
	}
}

// Notify logs the notification
func (n *LoggingNotifier) Notify(_ context.Context, notification WorkflowNotification) error {
	n.logger.Info("workflow notification",
		zap.String("inventory_id", notification.InventoryID),
		zap.String("aggregate_type", notification.AggregateType),
		zap.String("aggregate_id", notification.AggregateID),
		zap.String("event_type", notification.EventType),
		zap.String("status", notification.Status),
		zap.String("audience", string(notification.Audience)),
	)
	return nil
}

// Ensure LoggingNotifier implements Notifier
var _ Notifier = (*LoggingNotifier)(nil)
