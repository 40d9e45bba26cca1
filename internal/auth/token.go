package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"elibrary/internal/models"
)

// RoleLibrarian is the role claim granted to admin accounts.
const RoleLibrarian = "librarian"

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the signed-in librarian on every request.
type Claims struct {
	LibrarianID string `json:"librarian_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken issues a session token for a librarian.
func (m *Manager) GenerateToken(librarian *models.Librarian) (string, error) {
	now := time.Now()
	claims := Claims{
		LibrarianID: librarian.ID.String(),
		Name:        librarian.Name,
		Role:        librarian.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "elibrary-admin",
			Subject:   librarian.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies a token string and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
