package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment. A .env
// file is honored when present; real environment variables win.
type Config struct {
	DatabaseURL     string
	ServerAddr      string
	JWTSecret       string
	TokenTTL        time.Duration
	UploadDir       string
	DefaultLoanDays int
}

// Load reads the configuration. DATABASE_URL and JWT_SECRET are required;
// everything else has a sensible default.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may come from the host.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ServerAddr:      envOr("SERVER_ADDR", ":8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		UploadDir:       envOr("UPLOAD_DIR", "uploads"),
		TokenTTL:        24 * time.Hour,
		DefaultLoanDays: 7,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.New("TOKEN_TTL must be a duration like 24h")
		}
		cfg.TokenTTL = ttl
	}
	if raw := os.Getenv("DEFAULT_LOAN_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, errors.New("DEFAULT_LOAN_DAYS must be a positive integer")
		}
		cfg.DefaultLoanDays = days
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
