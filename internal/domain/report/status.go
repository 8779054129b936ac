package report

import "github.com/stockflow/backend/internal/domain/shared"

// Status is the lifecycle state of a report
type Status string

const (
	StatusInReview               Status = "IN_REVIEW"
	StatusRequestedChanges       Status = "REQUESTED_CHANGES"
	StatusPendingDeposit         Status = "PENDING_DEPOSIT"
	StatusInPendingDepositReview Status = "IN_PENDING_DEPOSIT_REVIEW"
	StatusAccepted               Status = "ACCEPTED"
)

// IsValid checks if the status is a known report status
func (s Status) IsValid() bool {
	switch s {
	case StatusInReview, StatusRequestedChanges, StatusPendingDeposit,
		StatusInPendingDepositReview, StatusAccepted:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a report in this status blocks a new report for
// the same inventory. Every non-terminal status counts, REQUESTED_CHANGES included.
func (s Status) IsActive() bool {
	return s.IsValid() && !Transitions.IsTerminal(s)
}

// ActiveStatuses lists the statuses that count towards the one-active-report rule
func ActiveStatuses() []Status {
	return []Status{StatusInReview, StatusPendingDeposit, StatusRequestedChanges, StatusInPendingDepositReview}
}

// Action is a workflow command applied to a report
type Action string

const (
	ActionRequestChanges        Action = "request_changes"
	ActionResubmit              Action = "resubmit"
	ActionAcceptLevelOne        Action = "accept_level_one"
	ActionSubmitDeposit         Action = "submit_deposit"
	ActionRequestDepositChanges Action = "request_deposit_changes"
	ActionFinalAccept           Action = "final_accept"
)

// Transitions is the report state machine. Every status change goes through it.
var Transitions = shared.TransitionTable[Status, Action]{
	StatusInReview: {
		ActionRequestChanges: StatusRequestedChanges,
		ActionAcceptLevelOne: StatusPendingDeposit,
	},
	StatusRequestedChanges: {
		ActionResubmit: StatusInReview,
	},
	StatusPendingDeposit: {
		ActionSubmitDeposit: StatusInPendingDepositReview,
	},
	StatusInPendingDepositReview: {
		ActionRequestDepositChanges: StatusPendingDeposit,
		ActionFinalAccept:           StatusAccepted,
	},
}
