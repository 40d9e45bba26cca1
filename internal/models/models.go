package models

import (
	"time"

	"github.com/google/uuid"

	"elibrary/internal/loanengine"
)

// Librarian is an admin account that can sign in and action loans.
type Librarian struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash    string    `gorm:"size:255;not null" json:"-"`
	Phone           string    `gorm:"size:64" json:"phone"`
	Address         string    `gorm:"size:255" json:"address"`
	Role            string    `gorm:"size:64;not null;default:librarian" json:"role"`
	ProfileImageURL string    `gorm:"size:512" json:"profile_image_url"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

// User is a library member (borrower). Members authenticate against the
// external identity provider; this table only holds profile data.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	ProfileImageURL string    `gorm:"size:512" json:"profile_image_url"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

type Book struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Author      string    `gorm:"size:255;not null" json:"author"`
	Year        int       `json:"year"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:128;index" json:"category"`
	Pages       int       `json:"pages"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	CoverURL    string    `gorm:"size:512" json:"cover_url"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

// Loan is one borrowing transaction. Status and the date columns move in
// lockstep per the lifecycle: approved_date set only once approved,
// return_date set only once returned, rejection_reason only on rejected.
type Loan struct {
	ID     uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID uuid.UUID         `gorm:"type:uuid;not null;index" json:"book_id"`
	Book   Book              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"book"`
	UserID uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user"`
	Status loanengine.Status `gorm:"size:16;not null;index" json:"status"`

	RequestDate     time.Time  `gorm:"not null" json:"request_date"`
	ApprovedDate    *time.Time `json:"approved_date"`
	DueDate         *time.Time `json:"due_date"`
	ReturnDate      *time.Time `json:"return_date"`
	LoanDuration    int        `gorm:"not null" json:"loan_duration"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	ApprovedByID *uuid.UUID `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	RejectedByID *uuid.UUID `gorm:"type:uuid" json:"rejected_by_id,omitempty"`
	ReturnedByID *uuid.UUID `gorm:"type:uuid" json:"returned_by_id,omitempty"`
}

// Record converts the row into the engine's immutable loan snapshot.
func (l *Loan) Record() loanengine.LoanRecord {
	return loanengine.LoanRecord{
		ID:              l.ID.String(),
		Status:          l.Status,
		RequestDate:     loanengine.TimestampOf(l.RequestDate),
		ApprovedDate:    loanengine.TimestampFromPtr(l.ApprovedDate),
		DueDate:         loanengine.TimestampFromPtr(l.DueDate),
		ReturnDate:      loanengine.TimestampFromPtr(l.ReturnDate),
		LoanDuration:    l.LoanDuration,
		RejectionReason: l.RejectionReason,
	}
}

// BookRecord converts the row into the engine's read-only book view.
func (b *Book) BookRecord() *loanengine.BookRecord {
	if b == nil {
		return nil
	}
	return &loanengine.BookRecord{
		Title:    b.Title,
		Author:   b.Author,
		CoverURL: b.CoverURL,
		Stock:    b.Stock,
		Year:     b.Year,
	}
}

// UserRecord converts the row into the engine's read-only borrower view.
func (u *User) UserRecord() *loanengine.UserRecord {
	if u == nil {
		return nil
	}
	return &loanengine.UserRecord{
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// Notification is an in-app message for a borrower (loan decisions,
// overdue reminders).
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}
