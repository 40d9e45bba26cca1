package loanengine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a single loan.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

// Action is a librarian-initiated state change request.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionReturn  Action = "return"
)

var (
	// ErrInvalidTransition is returned when the requested action is not
	// legal from the loan's current status.
	ErrInvalidTransition = errors.New("invalid loan state transition")

	// ErrMissingRejectionReason is returned when a rejection is attempted
	// without a non-empty reason.
	ErrMissingRejectionReason = errors.New("rejection requires a reason")

	// ErrUnknownAction is returned for an action outside the lifecycle.
	ErrUnknownAction = errors.New("unknown loan action")
)

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusReturned
}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

// transitions is the legal transition table: current status -> action -> next.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusApproved: {
		ActionReturn: StatusReturned,
	},
}

// NextStatus returns the status the action leads to from the given one.
func NextStatus(from Status, action Action) (Status, bool) {
	next, ok := transitions[from][action]
	return next, ok
}

// LoanRecord is the engine's view of one loan. It is a plain snapshot:
// the engine never mutates it and holds no reference after a call returns.
type LoanRecord struct {
	ID              string
	Status          Status
	RequestDate     Timestamp
	ApprovedDate    Timestamp
	DueDate         Timestamp
	ReturnDate      Timestamp
	LoanDuration    int
	RejectionReason string
}

// TransitionIntent describes the writes a legal transition requires. The
// engine owns no persistence: the backing store must apply every field of
// the intent atomically, re-validating legality under its own locking,
// since the engine's check alone is advisory under concurrent access.
type TransitionIntent struct {
	LoanID string
	From   Status
	To     Status
	Actor  uuid.UUID

	// ApprovedAt is set for approve, ReturnedAt for return.
	ApprovedAt *time.Time
	ReturnedAt *time.Time

	// RejectionReason is set for reject.
	RejectionReason string

	// StockDelta is the book stock adjustment the transition implies:
	// -1 on approve, +1 on return, 0 on reject. Applying it is the
	// store's responsibility; the engine never does stock arithmetic.
	StockDelta int
}

// Transition validates a librarian action against the loan's current state
// and returns the intent the store must apply. The actor is always passed
// in explicitly; there is no ambient identity.
func Transition(loan LoanRecord, action Action, actor uuid.UUID, reason string, now time.Time) (TransitionIntent, error) {
	switch action {
	case ActionApprove, ActionReject, ActionReturn:
	default:
		return TransitionIntent{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	next, ok := NextStatus(loan.Status, action)
	if !ok {
		return TransitionIntent{}, fmt.Errorf("%w: cannot %s a %s loan", ErrInvalidTransition, action, loan.Status)
	}

	intent := TransitionIntent{
		LoanID: loan.ID,
		From:   loan.Status,
		To:     next,
		Actor:  actor,
	}

	switch action {
	case ActionApprove:
		at := now
		intent.ApprovedAt = &at
		intent.StockDelta = -1
	case ActionReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return TransitionIntent{}, ErrMissingRejectionReason
		}
		intent.RejectionReason = reason
	case ActionReturn:
		at := now
		intent.ReturnedAt = &at
		intent.StockDelta = 1
	}
	return intent, nil
}
