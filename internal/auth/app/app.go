package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborline/bms/internal/auth/cache"
	"github.com/harborline/bms/internal/auth/cache/memory"
	"github.com/harborline/bms/internal/auth/cache/redis"
	"github.com/harborline/bms/internal/auth/email"
	httpapi "github.com/harborline/bms/internal/auth/http"
	"github.com/harborline/bms/internal/auth/service"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/internal/auth/store/drivers/sqlite"
	"github.com/harborline/bms/pkg/cryptox"
	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	cache      cache.Cache
	mail       email.Sender
	keyManager *jwtx.KeyManager

	// Services
	tokenService        *service.TokenService
	otpService          *service.OTPService
	accountService      *service.AccountService
	businessService     *service.BusinessService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "bms-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initEmail()

	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		NumKeys:  cfg.NumKeys,
	})
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager
	app.logger.Info("generated ephemeral signing keys",
		"num_keys", keyManager.NumSigners(), "issuer", cfg.Issuer)
	app.logger.Warn("all existing tokens are now invalid due to key rotation on startup")

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
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

// initCache picks the cache driver: redis when an address is configured,
// otherwise the in-process cache. The cache backs the OTP store and the
// access-token blacklist, so multi-instance deployments need redis.
func (app *Application) initCache() error {
	if app.cfg.RedisAddr == "" {
		app.cache = memory.New()
		app.logger.Info("using in-process cache")
		return nil
	}

	c, err := redis.New(context.Background(),
		app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB, app.cfg.RedisPrefix)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.cache = c
	app.logger.Info("using redis cache", "addr", app.cfg.RedisAddr)
	return nil
}

// initEmail picks the mail sender: SMTP when a host is configured, otherwise
// outbound mail goes to the log.
func (app *Application) initEmail() {
	if app.cfg.SMTPHost == "" {
		app.mail = email.NewLogSender(app.logger)
		app.logger.Warn("SMTP not configured, outbound mail goes to the log")
		return
	}

	app.mail = email.NewSMTPSender(email.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	app.logger.Info("SMTP sender configured", "host", app.cfg.SMTPHost)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Blacklist:  app.cache,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.otpService = service.NewOTPService(app.cache, app.cfg.OTPTTL)

	app.accountService = &service.AccountService{
		Store:  app.db,
		Tokens: app.tokenService,
		OTP:    app.otpService,
		Email:  app.mail,
	}

	app.businessService = &service.BusinessService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.BusinessService = app.businessService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
