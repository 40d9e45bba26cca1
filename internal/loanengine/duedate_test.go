package loanengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// approvedDate = 2025-01-01, loanDuration = 7 -> dueDate = 2025-01-08.
func TestComputeDueDate(t *testing.T) {
	approved := TimestampOf(time.Date(2025, time.January, 1, 14, 30, 0, 0, time.UTC))

	due := ComputeDueDate(approved, 7)
	got, ok := due.Time()
	require.True(t, ok)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 8, got.Day())
}

func TestComputeDueDateIdempotent(t *testing.T) {
	approved := TimestampOf(time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC))
	first := ComputeDueDate(approved, 14)
	second := ComputeDueDate(approved, 14)
	a, _ := first.Time()
	b, _ := second.Time()
	assert.True(t, a.Equal(b))
}

// Calendar days, not 24h blocks: crossing a DST spring-forward boundary
// must still land on the same wall-clock day offset.
func TestComputeDueDateCalendarDays(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2025-03-28 + 3 days crosses the March 30 DST switch.
	approved := TimestampOf(time.Date(2025, time.March, 28, 12, 0, 0, 0, loc))
	due := ComputeDueDate(approved, 3)
	got, ok := due.Time()
	require.True(t, ok)
	assert.Equal(t, 31, got.Day())
	assert.Equal(t, 12, got.Hour())
}

func TestComputeDueDateAbsentInputs(t *testing.T) {
	assert.False(t, ComputeDueDate(Timestamp{}, 7).Present())
	assert.False(t, ComputeDueDate(TimestampOf(time.Now()), 0).Present())
	assert.False(t, ComputeDueDate(TimestampOf(time.Now()), -3).Present())
}

func TestEffectiveDueDateStoredWins(t *testing.T) {
	stored := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	loan := LoanRecord{
		ApprovedDate: TimestampOf(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)),
		DueDate:      TimestampOf(stored),
		LoanDuration: 7,
	}

	due := EffectiveDueDate(loan)
	got, ok := due.Time()
	require.True(t, ok)
	assert.True(t, stored.Equal(got), "stored due date must never be recomputed")
}

func TestEffectiveDueDateDerived(t *testing.T) {
	loan := LoanRecord{
		ApprovedDate: TimestampOf(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)),
		LoanDuration: 7,
	}
	got, ok := EffectiveDueDate(loan).Time()
	require.True(t, ok)
	assert.Equal(t, 8, got.Day())

	// Never approved: no due date at all.
	assert.False(t, EffectiveDueDate(LoanRecord{LoanDuration: 7}).Present())
}
