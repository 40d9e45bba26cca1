package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"elibrary/internal/auth"
	"elibrary/internal/config"
	"elibrary/internal/handlers"
	"elibrary/internal/models"
	"elibrary/internal/realtime"
	"elibrary/internal/repositories"
	"elibrary/internal/services"
	"elibrary/internal/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.Librarian{},
		&models.User{},
		&models.Book{},
		&models.Loan{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload dir %s: %v", cfg.UploadDir, err)
	}

	librarianRepo := repositories.NewLibrarianRepository(db)
	userRepo := repositories.NewUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)

	hub := realtime.NewHub()
	go hub.Run()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(librarianRepo, tokens)
	loanService := services.NewLoanService(db, loanRepo, bookRepo, userRepo, notifRepo, hub, cfg.DefaultLoanDays)
	catalogService := services.NewCatalogService(db, bookRepo, userRepo, librarianRepo, loanRepo, notifRepo)

	overdue := workers.NewOverdueNotifier(loanRepo, notifRepo)
	if err := overdue.Start(); err != nil {
		log.Fatalf("failed to start overdue notifier: %v", err)
	}
	defer overdue.Stop()

	router := gin.Default()
	router.Static("/uploads", cfg.UploadDir)

	handlers.RegisterRoutes(router, tokens, authService, loanService, catalogService, hub, cfg.UploadDir)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
