package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/bookstore/backend/docs"
	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/config"
	"github.com/bookstore/backend/internal/handlers"
	"github.com/bookstore/backend/internal/logger"
	"github.com/bookstore/backend/internal/middleware"
	"github.com/bookstore/backend/internal/models"
	"github.com/bookstore/backend/internal/repositories"
	"github.com/bookstore/backend/internal/services"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const version = "1.0.0"

// @title Bookstore API
// @version 1.0
// @description API for the bookstore catalog, carts and user accounts

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Bookstore API", zap.String("version", version))

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db, cfg.Database.MigrationsPath); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize token service and password hasher
	tokens, err := auth.NewTokenService(cfg.JWT.Secret)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize token service", zap.Error(err))
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	bookRepo := repositories.NewBookRepository(db, logger.Logger)
	cartRepo := repositories.NewCartRepository(db, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, hasher, tokens, logger.Logger)
	userService := services.NewUserService(userRepo, hasher, logger.Logger)
	bookService := services.NewBookService(bookRepo, logger.Logger)
	cartService := services.NewCartService(cartRepo, logger.Logger)

	// Initialize handlers
	statusHandler := handlers.NewStatusHandler(version, logger.Logger)
	authHandler := handlers.NewAuthHandler(authService, tokens, logger.Logger)
	bookHandler := handlers.NewBookHandler(bookService, logger.Logger)
	cartHandler := handlers.NewCartHandler(cartService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(userService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokens, logger.Logger)
	if cfg.Auth.StrictMode {
		logger.Logger.Info("Strict session verification enabled")
		authMiddleware = middleware.StrictAuthMiddleware(tokens, userRepo, logger.Logger)
	}
	adminMiddleware := middleware.RoleMiddleware(models.RoleAdmin, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.Server.TrustProxy))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	statusHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r, authMiddleware)
	bookHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(r, authMiddleware)
	adminHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies pending migrations from dir
func runMigrations(db *sql.DB, dir string) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "bookstore_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Fall back to the parent directory when started from cmd/
	if _, err := os.Stat(dir); os.IsNotExist(err) && !filepath.IsAbs(dir) {
		if _, err := os.Stat(filepath.Join("..", dir)); err == nil {
			dir = filepath.Join("..", dir)
		}
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
