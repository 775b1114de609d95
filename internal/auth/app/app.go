package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tokenauth/internal/auth/http"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/tokenauth/internal/auth/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	credentials   *memory.CredentialStore
	refreshTokens store.RefreshTokens
	issuer        *jwtx.Issuer

	// Services
	validator           *service.CredentialValidator
	tokenService        *service.TokenService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New validates cfg and creates a new Application instance with all
// dependencies initialized. Configuration errors are fatal here rather than
// surfacing later as rejected requests.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  cfg.LogOutput,
		}),
	}

	issuer, err := InitIssuer(cfg)
	if err != nil {
		return nil, err
	}
	app.issuer = issuer

	creds, err := loadCredentials(SeedIdentities(), comparerFor(cfg.SecretHashing))
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	app.credentials = creds
	app.logger.Info("credential store loaded", "identities", creds.Len(), "hashing", cfg.SecretHashing)

	if err := app.initRefreshStore(context.Background()); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.refreshTokens.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion, "refresh_store", app.cfg.RefreshStore)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.refreshTokens.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close the refresh token store
	if err := app.refreshTokens.Close(); err != nil {
		app.logger.Error("error closing refresh token store", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	deriver := &service.ClaimsDeriver{}

	validator, err := service.NewCredentialValidator(app.credentials, comparerFor(app.cfg.SecretHashing), deriver)
	if err != nil {
		return fmt.Errorf("failed to initialize credential validator: %w", err)
	}
	app.validator = validator

	app.tokenService = &service.TokenService{
		Validator:     validator,
		Deriver:       deriver,
		Credentials:   app.credentials,
		RefreshTokens: app.refreshTokens,
		Issuer:        app.issuer,
		Verifier:      app.issuer.Verifier(),
		RefreshTTL:    app.cfg.refreshTTL(),
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.refreshTokens,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.logger)
	app.router.TokenService = app.tokenService
	app.router.Validator = app.validator
	app.router.Credentials = app.credentials
	app.router.StrictLimit = app.cfg.strictLimit()
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
