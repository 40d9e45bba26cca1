package services

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"elibrary/internal/auth"
	"elibrary/internal/models"
	"elibrary/internal/repositories"
)

// ErrInvalidCredentials is returned for a bad email/password pair. The
// same error covers both cases so callers cannot probe which emails exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService signs librarians in and issues session tokens.
type AuthService interface {
	Login(email, password string) (string, *models.Librarian, error)
}

type authService struct {
	librarianRepo repositories.LibrarianRepository
	tokens        *auth.Manager
}

func NewAuthService(librarianRepo repositories.LibrarianRepository, tokens *auth.Manager) AuthService {
	return &authService{librarianRepo: librarianRepo, tokens: tokens}
}

func (s *authService) Login(email, password string) (string, *models.Librarian, error) {
	librarian, err := s.librarianRepo.GetByEmail(nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(librarian.PasswordHash), []byte(password)); err != nil {
		log.Printf("[WARN] Login: bad password for %s", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(librarian)
	if err != nil {
		log.Printf("[ERROR] Login: failed to sign token for %s: %v", email, err)
		return "", nil, err
	}
	log.Printf("[INFO] Login: librarian %s signed in", librarian.ID)
	return token, librarian, nil
}

// HashPassword produces the stored hash for a librarian password; used by
// account provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
