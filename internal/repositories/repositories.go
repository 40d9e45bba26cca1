package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"elibrary/internal/loanengine"
	"elibrary/internal/models"
)

type LibrarianRepository interface {
	GetByEmail(db *gorm.DB, email string) (*models.Librarian, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Librarian, error)
	Update(db *gorm.DB, librarian *models.Librarian) error
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error)
	List(db *gorm.DB) ([]models.User, error)
	Count(db *gorm.DB) (int64, error)
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error)
	Update(db *gorm.DB, book *models.Book) error
	Delete(db *gorm.DB, id uuid.UUID) error
	// AdjustStock applies a stock delta guarded against going negative.
	// Returns gorm.ErrRecordNotFound when the guard rejects the update.
	AdjustStock(db *gorm.DB, bookID uuid.UUID, delta int) error
	Count(db *gorm.DB) (int64, error)
}

type LoanRepository interface {
	Create(db *gorm.DB, loan *models.Loan) error
	GetByID(db *gorm.DB, id uuid.UUID) (*models.Loan, error)
	GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Loan, error)
	List(db *gorm.DB, status loanengine.Status) ([]models.Loan, error)
	ListOverdue(db *gorm.DB, asOf time.Time) ([]models.Loan, error)
	CountActiveByUser(db *gorm.DB, userID uuid.UUID) (int64, error)
	CountByStatus(db *gorm.DB, status loanengine.Status) (int64, error)

	MarkApproved(db *gorm.DB, id uuid.UUID, approvedAt, dueDate time.Time, librarianID uuid.UUID) error
	MarkRejected(db *gorm.DB, id uuid.UUID, reason string, librarianID uuid.UUID) error
	MarkReturned(db *gorm.DB, id uuid.UUID, returnedAt time.Time, librarianID uuid.UUID) error
}

type NotificationRepository interface {
	Create(db *gorm.DB, n *models.Notification) error
	ListByUser(db *gorm.DB, userID uuid.UUID) ([]models.Notification, error)
}

// concrete implementations

type librarianRepository struct {
	db *gorm.DB
}

func NewLibrarianRepository(db *gorm.DB) LibrarianRepository {
	return &librarianRepository{db: db}
}

func (r *librarianRepository) GetByEmail(db *gorm.DB, email string) (*models.Librarian, error) {
	if db == nil {
		db = r.db
	}
	var librarian models.Librarian
	if err := db.First(&librarian, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &librarian, nil
}

func (r *librarianRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Librarian, error) {
	if db == nil {
		db = r.db
	}
	var librarian models.Librarian
	if err := db.First(&librarian, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &librarian, nil
}

func (r *librarianRepository) Update(db *gorm.DB, librarian *models.Librarian) error {
	if db == nil {
		db = r.db
	}
	return db.Save(librarian).Error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		db = r.db
	}
	var users []models.User
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.User{}).Count(&n).Error
	return n, err
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Order("title").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Save(book).Error
}

func (r *bookRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Book{}, "id = ?", id).Error
}

func (r *bookRepository) AdjustStock(db *gorm.DB, bookID uuid.UUID, delta int) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Book{}).
		Where("id = ? AND stock + ? >= 0", bookID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Book{}).Count(&n).Error
	return n, err
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(db *gorm.DB, loan *models.Loan) error {
	if db == nil {
		db = r.db
	}
	return db.Create(loan).Error
}

func (r *loanRepository) GetByID(db *gorm.DB, id uuid.UUID) (*models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loan models.Loan
	err := db.Preload("Book").Preload("User").First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) GetByIDForUpdate(db *gorm.DB, id uuid.UUID) (*models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loan models.Loan
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	// Preload outside the locking clause: FOR UPDATE cannot span the joined
	// book/user rows on all postgres versions.
	if err := db.First(&loan.Book, "id = ?", loan.BookID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.First(&loan.User, "id = ?", loan.UserID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) List(db *gorm.DB, status loanengine.Status) ([]models.Loan, error) {
	if db == nil {
		db = r.db
	}
	q := db.Preload("Book").Preload("User").Order("request_date DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var loans []models.Loan
	if err := q.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) ListOverdue(db *gorm.DB, asOf time.Time) ([]models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loans []models.Loan
	err := db.Preload("Book").
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", loanengine.StatusApproved, asOf).
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) CountActiveByUser(db *gorm.DB, userID uuid.UUID) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Loan{}).
		Where("user_id = ? AND status IN ?", userID, []loanengine.Status{loanengine.StatusPending, loanengine.StatusApproved}).
		Count(&n).Error
	return n, err
}

func (r *loanRepository) CountByStatus(db *gorm.DB, status loanengine.Status) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Loan{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// The Mark* updates carry the expected current status in the WHERE clause,
// so a concurrent transition that slipped in first makes the update a
// no-op and surfaces as gorm.ErrRecordNotFound.

func (r *loanRepository) MarkApproved(db *gorm.DB, id uuid.UUID, approvedAt, dueDate time.Time, librarianID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, loanengine.StatusPending).
		Updates(map[string]interface{}{
			"status":         loanengine.StatusApproved,
			"approved_date":  approvedAt,
			"due_date":       dueDate,
			"approved_by_id": librarianID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *loanRepository) MarkRejected(db *gorm.DB, id uuid.UUID, reason string, librarianID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, loanengine.StatusPending).
		Updates(map[string]interface{}{
			"status":           loanengine.StatusRejected,
			"rejection_reason": reason,
			"rejected_by_id":   librarianID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *loanRepository) MarkReturned(db *gorm.DB, id uuid.UUID, returnedAt time.Time, librarianID uuid.UUID) error {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Loan{}).
		Where("id = ? AND status = ? AND return_date IS NULL", id, loanengine.StatusApproved).
		Updates(map[string]interface{}{
			"status":         loanengine.StatusReturned,
			"return_date":    returnedAt,
			"returned_by_id": librarianID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(db *gorm.DB, n *models.Notification) error {
	if db == nil {
		db = r.db
	}
	return db.Create(n).Error
}

func (r *notificationRepository) ListByUser(db *gorm.DB, userID uuid.UUID) ([]models.Notification, error) {
	if db == nil {
		db = r.db
	}
	var notifications []models.Notification
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
