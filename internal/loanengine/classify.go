package loanengine

// Return verdicts, kept in Indonesian as displayed on the loan history
// screen.
const (
	VerdictOnTime = "Tepat Waktu"
	VerdictLate   = "Telat"
)

// ClassifyReturn labels a returned loan as on time or late. Both dates are
// truncated to midnight of their calendar day before comparison, so a
// return on the due date itself counts as on time regardless of
// time-of-day. The verdict is empty (not applicable) when the loan is not
// returned or either date is unavailable; in particular a returned loan
// with no recorded return timestamp gets no verdict rather than a
// fabricated on-time one.
func ClassifyReturn(status Status, dueDate, returnDate Timestamp) string {
	if status != StatusReturned {
		return ""
	}
	due, ok := dueDate.Time()
	if !ok {
		return ""
	}
	returned, ok := returnDate.Time()
	if !ok {
		return ""
	}
	if startOfDay(returned).After(startOfDay(due)) {
		return VerdictLate
	}
	return VerdictOnTime
}
