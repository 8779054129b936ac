package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stockflow/backend/internal/application/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkflowMetrics records report and shipment transitions as OTel instruments
type WorkflowMetrics struct {
	transitions metric.Int64Counter
	ledger      metric.Float64UpDownCounter
}

// NewWorkflowMetrics creates the instruments on meter
func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	transitions, err := meter.Int64Counter("stockflow.workflow.transitions",
		metric.WithDescription("Committed report and shipment transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}
	ledger, err := meter.Float64UpDownCounter("stockflow.ledger.delta",
		metric.WithDescription("Net amount moved into inventory balances by terminal transitions"),
	)
	if err != nil {
		return nil, err
	}
	return &WorkflowMetrics{transitions: transitions, ledger: ledger}, nil
}

// RecordTransition counts one transition
func (m *WorkflowMetrics) RecordTransition(ctx context.Context, aggregate, action, toStatus string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("aggregate", aggregate),
		attribute.String("action", action),
		attribute.String("to_status", toStatus),
	))
}

// RecordLedgerDelta adds the signed amount. Float precision is fine for dashboards;
// the ledger itself stays decimal.
func (m *WorkflowMetrics) RecordLedgerDelta(ctx context.Context, aggregate string, delta decimal.Decimal) {
	f, _ := delta.Float64()
	m.ledger.Add(ctx, f, metric.WithAttributes(attribute.String("aggregate", aggregate)))
}

var _ workflow.Recorder = (*WorkflowMetrics)(nil)
