package loanengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildProjectionDefaults(t *testing.T) {
	loan := LoanRecord{ID: "loan-1", Status: StatusPending, LoanDuration: 7}

	p := BuildProjection(loan, nil, nil)

	assert.Equal(t, DefaultBookTitle, p.BookTitle)
	assert.Equal(t, DefaultBookAuthor, p.BookAuthor)
	assert.Equal(t, DefaultUserName, p.BorrowerName)
	assert.Equal(t, DefaultUserEmail, p.BorrowerEmail)
	assert.Equal(t, DefaultCoverPath, p.CoverURL)
	assert.Equal(t, DefaultAvatarPath, p.AvatarURL)
	assert.Equal(t, "-", p.RequestDate)
	assert.Equal(t, "-", p.ApprovedDate)
	assert.Equal(t, "-", p.DueDate)
	assert.Equal(t, "-", p.ReturnDate)
	assert.Empty(t, p.Verdict)
}

func TestBuildProjectionPartialEntities(t *testing.T) {
	loan := LoanRecord{ID: "loan-1", Status: StatusPending}
	book := &BookRecord{Title: "Pemrograman Java"}
	user := &UserRecord{Email: "ahmad@mail.com"}

	p := BuildProjection(loan, book, user)

	assert.Equal(t, "Pemrograman Java", p.BookTitle)
	assert.Equal(t, DefaultBookAuthor, p.BookAuthor)
	assert.Equal(t, DefaultUserName, p.BorrowerName)
	assert.Equal(t, "ahmad@mail.com", p.BorrowerEmail)
}

func TestBuildProjectionFullLifecycle(t *testing.T) {
	loan := LoanRecord{
		ID:           "loan-1",
		Status:       StatusReturned,
		RequestDate:  day(2025, time.January, 1, 9, 0),
		ApprovedDate: day(2025, time.January, 1, 10, 0),
		ReturnDate:   day(2025, time.January, 10, 16, 0),
		LoanDuration: 7,
	}
	book := &BookRecord{Title: "Flutter untuk Pemula", Author: "Siti Rahma", CoverURL: "/uploads/flutter.png"}
	user := &UserRecord{Name: "Ahmad Nur", Email: "ahmad@mail.com", ProfileImageURL: "/uploads/ahmad.png"}

	p := BuildProjection(loan, book, user)

	assert.Equal(t, "1 Januari 2025", p.ApprovedDate)
	// Derived due date: approval + 7 calendar days.
	assert.Equal(t, "8 Januari 2025", p.DueDate)
	assert.Equal(t, "10 Januari 2025", p.ReturnDate)
	assert.Equal(t, VerdictLate, p.Verdict)
	assert.Equal(t, "/uploads/flutter.png", p.CoverURL)
	assert.Equal(t, "Ahmad Nur", p.BorrowerName)
}

func TestBuildProjectionStoredDueDateWins(t *testing.T) {
	loan := LoanRecord{
		ID:           "loan-1",
		Status:       StatusReturned,
		ApprovedDate: day(2025, time.January, 1, 0, 0),
		DueDate:      day(2025, time.January, 20, 0, 0),
		ReturnDate:   day(2025, time.January, 10, 0, 0),
		LoanDuration: 7,
	}

	p := BuildProjection(loan, nil, nil)

	assert.Equal(t, "20 Januari 2025", p.DueDate)
	assert.Equal(t, VerdictOnTime, p.Verdict)
}

// A returned loan without a recorded return timestamp gets no verdict.
func TestBuildProjectionNoVerdictWithoutReturnDate(t *testing.T) {
	loan := LoanRecord{
		ID:           "loan-1",
		Status:       StatusReturned,
		ApprovedDate: day(2025, time.January, 1, 0, 0),
		LoanDuration: 7,
	}
	p := BuildProjection(loan, nil, nil)
	assert.Empty(t, p.Verdict)
	assert.Equal(t, "-", p.ReturnDate)
}

func TestBuildProjectionVerdictOnlyWhenReturned(t *testing.T) {
	loan := LoanRecord{
		ID:           "loan-1",
		Status:       StatusApproved,
		ApprovedDate: day(2025, time.January, 1, 0, 0),
		ReturnDate:   day(2025, time.January, 10, 0, 0),
		LoanDuration: 7,
	}
	p := BuildProjection(loan, nil, nil)
	assert.Empty(t, p.Verdict)
}
