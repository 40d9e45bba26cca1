package loanengine

// ComputeDueDate derives the date an approved loan falls due: the approval
// instant plus the loan duration in calendar days. AddDate keeps the
// arithmetic correct across DST boundaries (a "day" is a calendar day, not
// a 24h block). Absent approval or a non-positive duration yields absent.
func ComputeDueDate(approved Timestamp, loanDuration int) Timestamp {
	t, ok := approved.Time()
	if !ok || loanDuration <= 0 {
		return Timestamp{}
	}
	return TimestampOf(t.AddDate(0, 0, loanDuration))
}

// EffectiveDueDate resolves the due date for a loan: a stored due date
// always wins and is never recomputed; otherwise the date is derived from
// the approval instant and duration.
func EffectiveDueDate(loan LoanRecord) Timestamp {
	if loan.DueDate.Present() {
		return loan.DueDate
	}
	return ComputeDueDate(loan.ApprovedDate, loan.LoanDuration)
}
