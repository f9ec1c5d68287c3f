package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskward-app/taskward-api/internal/config"
	"github.com/taskward-app/taskward-api/internal/platform/imagestore"
	"github.com/taskward-app/taskward-api/internal/platform/mailer"
	"github.com/taskward-app/taskward-api/internal/platform/postgres"
	"github.com/taskward-app/taskward-api/internal/service/auth"
	"github.com/taskward-app/taskward-api/internal/service/magiclink"
	"github.com/taskward-app/taskward-api/internal/service/task"
	"github.com/taskward-app/taskward-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore      store.UserStore
	magicLinkStore store.MagicLinkStore
	taskStore      store.TaskStore

	// Service layer
	jwtService       auth.JWTService
	tokenCache       *auth.TokenCache
	authenticator    *auth.Authenticator
	googleLogin      *auth.GoogleLoginService
	magicLinkService *magiclink.Service
	taskService      *task.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logger and database connection must be
// established by the caller first.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service and the token verification cache
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_days", cfg.Auth.TokenLifetimeDays)

	app.tokenCache = auth.NewTokenCache(
		cfg.Auth.TokenCacheSize,
		time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second,
	)
	app.authenticator = auth.NewAuthenticator(app.tokenCache, app.jwtService, logger)

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.magicLinkStore = postgres.NewPostgresMagicLinkStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Initialize email delivery for magic links
	notifier, err := mailer.NewSMTPMailer(cfg.SMTP, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app.magicLinkService = magiclink.NewService(
		app.userStore,
		app.magicLinkStore,
		app.jwtService,
		notifier,
		cfg.Server.BackendURL,
		logger,
	)

	app.googleLogin = auth.NewGoogleLoginService(app.userStore, app.jwtService, logger)

	// Image uploads are optional; without Cloudinary configuration tasks
	// simply carry no images.
	var uploader task.ImageUploader
	if cfg.Cloudinary.URL != "" {
		cloudinaryUploader, err := imagestore.NewCloudinaryUploader(cfg.Cloudinary, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize image uploader: %w", err)
		}
		uploader = cloudinaryUploader
		logger.Info("Cloudinary image uploads enabled")
	} else {
		logger.Info("Cloudinary not configured, image uploads disabled")
	}

	app.taskService = task.NewService(app.taskStore, uploader, logger)

	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
