package loanengine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from   Status
		action Action
		to     Status
		legal  bool
	}{
		{StatusPending, ActionApprove, StatusApproved, true},
		{StatusPending, ActionReject, StatusRejected, true},
		{StatusPending, ActionReturn, "", false},
		{StatusApproved, ActionReturn, StatusReturned, true},
		{StatusApproved, ActionApprove, "", false},
		{StatusApproved, ActionReject, "", false},
		{StatusRejected, ActionApprove, "", false},
		{StatusRejected, ActionReject, "", false},
		{StatusRejected, ActionReturn, "", false},
		{StatusReturned, ActionApprove, "", false},
		{StatusReturned, ActionReject, "", false},
		{StatusReturned, ActionReturn, "", false},
	}

	for _, tc := range tests {
		next, ok := NextStatus(tc.from, tc.action)
		assert.Equal(t, tc.legal, ok, "%s -> %s", tc.from, tc.action)
		if tc.legal {
			assert.Equal(t, tc.to, next)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusReturned.Terminal())
}

func TestTransitionApprove(t *testing.T) {
	now := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
	actor := uuid.New()
	loan := LoanRecord{ID: "loan-1", Status: StatusPending, LoanDuration: 7}

	intent, err := Transition(loan, ActionApprove, actor, "", now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, intent.From)
	assert.Equal(t, StatusApproved, intent.To)
	assert.Equal(t, actor, intent.Actor)
	require.NotNil(t, intent.ApprovedAt)
	assert.True(t, now.Equal(*intent.ApprovedAt))
	assert.Nil(t, intent.ReturnedAt)
	assert.Equal(t, -1, intent.StockDelta)
}

func TestTransitionReject(t *testing.T) {
	loan := LoanRecord{ID: "loan-1", Status: StatusPending}

	_, err := Transition(loan, ActionReject, uuid.New(), "   ", time.Now())
	assert.ErrorIs(t, err, ErrMissingRejectionReason)

	intent, err := Transition(loan, ActionReject, uuid.New(), "stock reserved for class", time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, intent.To)
	assert.Equal(t, "stock reserved for class", intent.RejectionReason)
	assert.Zero(t, intent.StockDelta)
	assert.Nil(t, intent.ApprovedAt)
}

func TestTransitionReturn(t *testing.T) {
	now := time.Now()
	loan := LoanRecord{ID: "loan-1", Status: StatusApproved}

	intent, err := Transition(loan, ActionReturn, uuid.New(), "", now)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, intent.To)
	require.NotNil(t, intent.ReturnedAt)
	assert.Equal(t, 1, intent.StockDelta)
}

// Returning a pending loan must be rejected as an invalid transition.
func TestTransitionPendingCannotReturn(t *testing.T) {
	loan := LoanRecord{ID: "loan-1", Status: StatusPending}
	_, err := Transition(loan, ActionReturn, uuid.New(), "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionFromTerminal(t *testing.T) {
	for _, from := range []Status{StatusRejected, StatusReturned} {
		for _, action := range []Action{ActionApprove, ActionReject, ActionReturn} {
			loan := LoanRecord{ID: "loan-1", Status: from, RejectionReason: "x"}
			_, err := Transition(loan, action, uuid.New(), "some reason", time.Now())
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", action, from)
		}
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	loan := LoanRecord{ID: "loan-1", Status: StatusPending}
	_, err := Transition(loan, Action("archive"), uuid.New(), "", time.Now())
	assert.ErrorIs(t, err, ErrUnknownAction)
}
