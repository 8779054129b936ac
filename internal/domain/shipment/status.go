package shipment

import "github.com/stockflow/backend/internal/domain/shared"

// Status is the lifecycle state of a shipment
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusAccepted      Status = "ACCEPTED"
)

// IsValid checks if the status is a known shipment status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingReview, StatusAccepted:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a shipment in this status blocks a new shipment
func (s Status) IsActive() bool {
	return s.IsValid() && !Transitions.IsTerminal(s)
}

// ActiveStatuses lists the statuses that count towards the one-active-shipment rule
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusPendingReview}
}

// Action is a workflow command applied to a shipment
type Action string

const (
	ActionSubmitForReview Action = "submit_for_review"
	ActionRequestUpdate   Action = "request_update"
	ActionAccept          Action = "accept"
)

// Transitions is the shipment state machine
var Transitions = shared.TransitionTable[Status, Action]{
	StatusPending: {
		ActionSubmitForReview: StatusPendingReview,
	},
	StatusPendingReview: {
		ActionRequestUpdate: StatusPending,
		ActionAccept:        StatusAccepted,
	},
}
