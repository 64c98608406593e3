package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/ls-softworks/comitte/internal/comitte/http"
	"github.com/ls-softworks/comitte/internal/comitte/service"
	"github.com/ls-softworks/comitte/internal/comitte/store"
	"github.com/ls-softworks/comitte/internal/comitte/store/drivers/sqlite"
	"github.com/ls-softworks/comitte/pkg/cryptox"
	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/ls-softworks/comitte/pkg/sessionx"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	codec    *jwtx.Codec
	sessions *sessionx.Tracker

	// Services
	authService         *service.AuthService
	resetService        *service.PasswordResetService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "comitte",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	codec, err := app.initCodec()
	if err != nil {
		return nil, err
	}
	app.codec = codec
	app.sessions = sessionx.NewTracker(app.cfg.InactivityWindow)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("comitte service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down comitte service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGrace)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("comitte service stopped")
	return nil
}

// initCodec builds the token codec from the configured base64 secret. When
// no secret is configured a random one is generated, which means issued
// tokens stop verifying across restarts. A malformed or short secret is a
// hard startup error rather than a silent downgrade.
func (app *Application) initCodec() (*jwtx.Codec, error) {
	if app.cfg.JWTSecret == "" {
		secret := make([]byte, jwtx.MinSecretBytes)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
		app.logger.Warn("COMITTE_JWT_SECRET not set, using an ephemeral signing secret; tokens will not survive a restart")
		app.cfg.JWTSecret = base64.StdEncoding.EncodeToString(secret)
	}

	codec, err := jwtx.NewCodecBase64(app.cfg.JWTSecret, app.cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("invalid COMITTE_JWT_SECRET: %w", err)
	}
	return codec, nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:    app.db,
		Codec:    app.codec,
		Sessions: app.sessions,
		Hasher:   service.DefaultHasher(),
		TokenTTL: app.cfg.TokenTTL,
	}

	app.resetService = &service.PasswordResetService{
		Store:  app.db,
		Mailer: service.LogMailer{},
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.sessions,
		app.logger,
		app.cfg.HousekeepInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.sessions,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.ResetService = app.resetService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
