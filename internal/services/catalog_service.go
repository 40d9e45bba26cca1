package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"elibrary/internal/loanengine"
	"elibrary/internal/models"
	"elibrary/internal/repositories"
)

// ErrLibrarianNotFound is returned when the referenced librarian account
// does not exist.
var ErrLibrarianNotFound = errors.New("librarian not found")

// BookInput carries the writable book fields; CoverURL is set by the
// handler after the upload is stored.
type BookInput struct {
	Title       string
	Author      string
	Year        int
	Description string
	Category    string
	Pages       int
	Stock       int
	CoverURL    string
}

// LibrarianInput carries the editable profile fields.
type LibrarianInput struct {
	Name            string
	Email           string
	Phone           string
	Address         string
	Role            string
	ProfileImageURL string
}

// DashboardStats backs the admin home cards and the sidebar badge.
type DashboardStats struct {
	TotalBooks      int64 `json:"total_books"`
	TotalUsers      int64 `json:"total_users"`
	ActiveLoans     int64 `json:"active_loans"`
	PendingRequests int64 `json:"pending_requests"`
}

// CatalogService covers everything outside the loan lifecycle: the book
// catalog, member records, librarian profiles, and dashboard stats.
type CatalogService interface {
	CreateBook(input BookInput) (*models.Book, error)
	UpdateBook(id uuid.UUID, input BookInput) (*models.Book, error)
	DeleteBook(id uuid.UUID) error
	GetBook(id uuid.UUID) (*models.Book, error)
	ListBooks() ([]models.Book, error)

	RegisterUser(name, email, profileImageURL string) (*models.User, error)
	ListUsers() ([]models.User, error)
	GetUser(id uuid.UUID) (*models.User, error)
	ListUserNotifications(id uuid.UUID) ([]models.Notification, error)

	GetLibrarian(id uuid.UUID) (*models.Librarian, error)
	UpdateLibrarian(id uuid.UUID, input LibrarianInput) (*models.Librarian, error)

	DashboardStats() (*DashboardStats, error)
}

type catalogService struct {
	db            *gorm.DB
	bookRepo      repositories.BookRepository
	userRepo      repositories.UserRepository
	librarianRepo repositories.LibrarianRepository
	loanRepo      repositories.LoanRepository
	notifRepo     repositories.NotificationRepository
}

func NewCatalogService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	librarianRepo repositories.LibrarianRepository,
	loanRepo repositories.LoanRepository,
	notifRepo repositories.NotificationRepository,
) CatalogService {
	return &catalogService{
		db:            db,
		bookRepo:      bookRepo,
		userRepo:      userRepo,
		librarianRepo: librarianRepo,
		loanRepo:      loanRepo,
		notifRepo:     notifRepo,
	}
}

func (s *catalogService) CreateBook(input BookInput) (*models.Book, error) {
	book := &models.Book{
		Title:       input.Title,
		Author:      input.Author,
		Year:        input.Year,
		Description: input.Description,
		Category:    input.Category,
		Pages:       input.Pages,
		Stock:       input.Stock,
		CoverURL:    input.CoverURL,
	}
	if err := s.bookRepo.Create(nil, book); err != nil {
		log.Printf("[ERROR] CreateBook: failed to create %q: %v", input.Title, err)
		return nil, err
	}
	log.Printf("[INFO] CreateBook: created %q (id=%s, stock=%d)", book.Title, book.ID, book.Stock)
	return book, nil
}

func (s *catalogService) UpdateBook(id uuid.UUID, input BookInput) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Year = input.Year
	book.Description = input.Description
	book.Category = input.Category
	book.Pages = input.Pages
	book.Stock = input.Stock
	if input.CoverURL != "" {
		book.CoverURL = input.CoverURL
	}

	if err := s.bookRepo.Update(nil, book); err != nil {
		log.Printf("[ERROR] UpdateBook: failed to update %s: %v", id, err)
		return nil, err
	}
	return book, nil
}

func (s *catalogService) DeleteBook(id uuid.UUID) error {
	if _, err := s.bookRepo.GetByID(nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	if err := s.bookRepo.Delete(nil, id); err != nil {
		log.Printf("[ERROR] DeleteBook: failed to delete %s: %v", id, err)
		return err
	}
	log.Printf("[INFO] DeleteBook: deleted %s", id)
	return nil
}

func (s *catalogService) GetBook(id uuid.UUID) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *catalogService) ListBooks() ([]models.Book, error) {
	return s.bookRepo.List(nil)
}

func (s *catalogService) RegisterUser(name, email, profileImageURL string) (*models.User, error) {
	user := &models.User{
		Name:            name,
		Email:           email,
		ProfileImageURL: profileImageURL,
	}
	if err := s.userRepo.Create(nil, user); err != nil {
		log.Printf("[ERROR] RegisterUser: failed for %s: %v", email, err)
		return nil, err
	}
	log.Printf("[INFO] RegisterUser: registered %s (id=%s)", email, user.ID)
	return user, nil
}

func (s *catalogService) ListUsers() ([]models.User, error) {
	return s.userRepo.List(nil)
}

func (s *catalogService) GetUser(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *catalogService) ListUserNotifications(id uuid.UUID) ([]models.Notification, error) {
	return s.notifRepo.ListByUser(nil, id)
}

func (s *catalogService) GetLibrarian(id uuid.UUID) (*models.Librarian, error) {
	librarian, err := s.librarianRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLibrarianNotFound
		}
		return nil, err
	}
	return librarian, nil
}

func (s *catalogService) UpdateLibrarian(id uuid.UUID, input LibrarianInput) (*models.Librarian, error) {
	librarian, err := s.librarianRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLibrarianNotFound
		}
		return nil, err
	}

	if input.Name != "" {
		librarian.Name = input.Name
	}
	if input.Email != "" {
		librarian.Email = input.Email
	}
	librarian.Phone = input.Phone
	librarian.Address = input.Address
	if input.Role != "" {
		librarian.Role = input.Role
	}
	if input.ProfileImageURL != "" {
		librarian.ProfileImageURL = input.ProfileImageURL
	}

	if err := s.librarianRepo.Update(nil, librarian); err != nil {
		log.Printf("[ERROR] UpdateLibrarian: failed for %s: %v", id, err)
		return nil, err
	}
	return librarian, nil
}

func (s *catalogService) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error
	if stats.TotalBooks, err = s.bookRepo.Count(nil); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.userRepo.Count(nil); err != nil {
		return nil, err
	}
	if stats.ActiveLoans, err = s.loanRepo.CountByStatus(nil, loanengine.StatusApproved); err != nil {
		return nil, err
	}
	if stats.PendingRequests, err = s.loanRepo.CountByStatus(nil, loanengine.StatusPending); err != nil {
		return nil, err
	}
	return stats, nil
}
