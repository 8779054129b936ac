package workflow

import (
	"context"

	"github.com/shopspring/decimal"
)

// Recorder receives workflow measurements
type Recorder interface {
	// RecordTransition counts a committed transition of an aggregate
	RecordTransition(ctx context.Context, aggregate, action, toStatus string)
	// RecordLedgerDelta records the amount a terminal transition moved an inventory balance
	RecordLedgerDelta(ctx context.Context, aggregate string, delta decimal.Decimal)
}

// NoopRecorder discards measurements
type NoopRecorder struct{}

func (NoopRecorder) RecordTransition(context.Context, string, string, string)   {}
func (NoopRecorder) RecordLedgerDelta(context.Context, string, decimal.Decimal) {}
