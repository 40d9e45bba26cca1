package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"elibrary/internal/loanengine"
	"elibrary/internal/models"
	"elibrary/internal/repositories"
)

// MaxActiveLoansPerUser caps how many pending/approved loans one borrower
// may hold at once.
const MaxActiveLoansPerUser = 3

var (
	// ErrLoanNotFound is returned when the referenced loan does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrBookNotFound is returned when the requested book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrOutOfStock is returned when an approval would drive stock negative.
	ErrOutOfStock = errors.New("book out of stock")

	// ErrTooManyActiveLoans is returned when the borrower is at the active
	// loan cap.
	ErrTooManyActiveLoans = errors.New("active loan limit reached")
)

// PendingPublisher receives the pending-request count after every change.
// The realtime hub implements it; tests may substitute anything.
type PendingPublisher interface {
	PublishPendingCount(count int64)
}

// LoanService owns the loan lifecycle: request creation plus the three
// librarian transitions. Every transition is validated by the engine and
// then re-validated inside the transaction under a row lock, since the
// engine check alone is advisory under concurrent access.
type LoanService interface {
	RequestLoan(userID, bookID uuid.UUID, duration int) (*models.Loan, error)
	ApproveLoan(loanID, librarianID uuid.UUID) (*models.Loan, error)
	RejectLoan(loanID, librarianID uuid.UUID, reason string) (*models.Loan, error)
	ReturnLoan(loanID, librarianID uuid.UUID) (*models.Loan, error)

	ListLoans(status loanengine.Status) ([]loanengine.Projection, error)
	PendingCount() (int64, error)
}

type loanService struct {
	db              *gorm.DB
	loanRepo        repositories.LoanRepository
	bookRepo        repositories.BookRepository
	userRepo        repositories.UserRepository
	notifRepo       repositories.NotificationRepository
	publisher       PendingPublisher
	defaultLoanDays int
}

// NewLoanService wires up all dependencies and returns a LoanService.
// publisher may be nil when no realtime channel is attached.
func NewLoanService(
	db *gorm.DB,
	loanRepo repositories.LoanRepository,
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	publisher PendingPublisher,
	defaultLoanDays int,
) LoanService {
	return &loanService{
		db:              db,
		loanRepo:        loanRepo,
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		notifRepo:       notifRepo,
		publisher:       publisher,
		defaultLoanDays: defaultLoanDays,
	}
}

// RequestLoan creates a loan in pending state on behalf of a borrower.
// Stock is not touched here: the decrement happens on approval.
func (s *loanService) RequestLoan(userID, bookID uuid.UUID, duration int) (*models.Loan, error) {
	if duration <= 0 {
		duration = s.defaultLoanDays
	}

	var created *models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.GetByID(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		book, err := s.bookRepo.GetByID(tx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		active, err := s.loanRepo.CountActiveByUser(tx, userID)
		if err != nil {
			return err
		}
		if active >= MaxActiveLoansPerUser {
			log.Printf("[WARN] RequestLoan: user %s already holds %d active loans", userID, active)
			return ErrTooManyActiveLoans
		}

		loan := &models.Loan{
			BookID:       bookID,
			UserID:       userID,
			Status:       loanengine.StatusPending,
			RequestDate:  time.Now().UTC(),
			LoanDuration: duration,
		}
		if err := s.loanRepo.Create(tx, loan); err != nil {
			log.Printf("[ERROR] RequestLoan: failed to create loan for user %s / book %s: %v", userID, bookID, err)
			return err
		}
		created = loan

		msg := fmt.Sprintf("Permintaan peminjaman '%s' dikirim. Menunggu persetujuan pustakawan.", book.Title)
		if err := s.notify(tx, user.ID, msg); err != nil {
			return err
		}
		log.Printf("[INFO] RequestLoan: loan %s created (user=%s, book=%s, duration=%d days)", loan.ID, userID, bookID, duration)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishPending()
	return created, nil
}

// ApproveLoan moves a pending loan to approved: locks the loan row,
// validates the transition, applies the stock decrement exactly once, and
// stamps the approval date plus the derived due date. A due date already
// on the row is kept as-is.
func (s *loanService) ApproveLoan(loanID, librarianID uuid.UUID) (*models.Loan, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		intent, err := loanengine.Transition(loan.Record(), loanengine.ActionApprove, librarianID, "", time.Now().UTC())
		if err != nil {
			log.Printf("[WARN] ApproveLoan: loan %s refused: %v", loanID, err)
			return err
		}

		if err := s.bookRepo.AdjustStock(tx, loan.BookID, intent.StockDelta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[WARN] ApproveLoan: book %s has no stock left for loan %s", loan.BookID, loanID)
				return ErrOutOfStock
			}
			return err
		}

		dueDate := loan.DueDate
		if dueDate == nil {
			due := loanengine.ComputeDueDate(loanengine.TimestampOf(*intent.ApprovedAt), loan.LoanDuration)
			if t, ok := due.Time(); ok {
				dueDate = &t
			}
		}
		if dueDate == nil {
			return fmt.Errorf("loan %s has no usable duration (%d days)", loanID, loan.LoanDuration)
		}

		if err := s.loanRepo.MarkApproved(tx, loanID, *intent.ApprovedAt, *dueDate, librarianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Lost a race despite the lock guard; treat as invalid transition.
				return fmt.Errorf("%w: loan %s no longer pending", loanengine.ErrInvalidTransition, loanID)
			}
			return err
		}

		msg := fmt.Sprintf("Peminjaman '%s' disetujui. Batas pengembalian: %s.",
			loan.Book.Title, loanengine.FormatDate(loanengine.TimestampOf(*dueDate)))
		if err := s.notify(tx, loan.UserID, msg); err != nil {
			return err
		}
		log.Printf("[INFO] ApproveLoan: loan %s approved by %s, due %s", loanID, librarianID, dueDate.Format("2006-01-02"))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishPending()
	return s.loanRepo.GetByID(nil, loanID)
}

// RejectLoan moves a pending loan to rejected. The reason requirement is
// enforced by the engine before any row is written.
func (s *loanService) RejectLoan(loanID, librarianID uuid.UUID, reason string) (*models.Loan, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		intent, err := loanengine.Transition(loan.Record(), loanengine.ActionReject, librarianID, reason, time.Now().UTC())
		if err != nil {
			log.Printf("[WARN] RejectLoan: loan %s refused: %v", loanID, err)
			return err
		}

		if err := s.loanRepo.MarkRejected(tx, loanID, intent.RejectionReason, librarianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %s no longer pending", loanengine.ErrInvalidTransition, loanID)
			}
			return err
		}

		msg := fmt.Sprintf("Peminjaman '%s' ditolak. Alasan: %s", loan.Book.Title, intent.RejectionReason)
		if err := s.notify(tx, loan.UserID, msg); err != nil {
			return err
		}
		log.Printf("[INFO] RejectLoan: loan %s rejected by %s", loanID, librarianID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishPending()
	return s.loanRepo.GetByID(nil, loanID)
}

// ReturnLoan moves an approved loan to returned and puts the copy back in
// stock in the same transaction.
func (s *loanService) ReturnLoan(loanID, librarianID uuid.UUID) (*models.Loan, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loan, err := s.loanRepo.GetByIDForUpdate(tx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		intent, err := loanengine.Transition(loan.Record(), loanengine.ActionReturn, librarianID, "", time.Now().UTC())
		if err != nil {
			log.Printf("[WARN] ReturnLoan: loan %s refused: %v", loanID, err)
			return err
		}

		if err := s.loanRepo.MarkReturned(tx, loanID, *intent.ReturnedAt, librarianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %s not returnable", loanengine.ErrInvalidTransition, loanID)
			}
			return err
		}

		if err := s.bookRepo.AdjustStock(tx, loan.BookID, intent.StockDelta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		record := loan.Record()
		record.Status = loanengine.StatusReturned
		record.ReturnDate = loanengine.TimestampOf(*intent.ReturnedAt)
		verdict := loanengine.ClassifyReturn(record.Status, loanengine.EffectiveDueDate(record), record.ReturnDate)

		msg := fmt.Sprintf("Pengembalian '%s' dicatat (%s).", loan.Book.Title, verdict)
		if err := s.notify(tx, loan.UserID, msg); err != nil {
			return err
		}
		log.Printf("[INFO] ReturnLoan: loan %s returned by %s, verdict=%s", loanID, librarianID, verdict)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loanRepo.GetByID(nil, loanID)
}

// ListLoans returns display projections, optionally filtered by status.
// An empty status means all loans.
func (s *loanService) ListLoans(status loanengine.Status) ([]loanengine.Projection, error) {
	loans, err := s.loanRepo.List(nil, status)
	if err != nil {
		return nil, err
	}
	projections := make([]loanengine.Projection, 0, len(loans))
	for i := range loans {
		loan := &loans[i]
		projections = append(projections, loanengine.BuildProjection(
			loan.Record(), loan.Book.BookRecord(), loan.User.UserRecord()))
	}
	return projections, nil
}

func (s *loanService) PendingCount() (int64, error) {
	return s.loanRepo.CountByStatus(nil, loanengine.StatusPending)
}

func (s *loanService) notify(tx *gorm.DB, userID uuid.UUID, message string) error {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.notifRepo.Create(tx, n); err != nil {
		log.Printf("[ERROR] notify: failed to store notification for user %s: %v", userID, err)
		return err
	}
	return nil
}

func (s *loanService) publishPending() {
	if s.publisher == nil {
		return
	}
	count, err := s.PendingCount()
	if err != nil {
		log.Printf("[ERROR] publishPending: failed to count pending loans: %v", err)
		return
	}
	s.publisher.PublishPendingCount(count)
}
