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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aussiebroadwan/authgate/internal/auth/audit"
	httpapi "github.com/aussiebroadwan/authgate/internal/auth/http"
	"github.com/aussiebroadwan/authgate/internal/auth/service"
	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/bolt"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authgate/pkg/cryptox"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/siam"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// selfCheckTimeout bounds the startup check of the IdP.
const selfCheckTimeout = 10 * time.Second

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	access   *jwtx.AccessBuilder
	refresh  *jwtx.RefreshBuilder
	gateway  *siam.Client
	registry *prometheus.Registry

	// Services
	sessionService *service.SessionService
	tokenService   *service.TokenService
	authzService   *service.AuthzService
	selfCheck      *service.SelfCheck

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := app.initTokens(); err != nil {
		return nil, err
	}
	if err := app.initGateway(); err != nil {
		return nil, err
	}

	// Initialize database last so nothing leaks if configuration is bad
	db, err := OpenStore(context.Background(), cfg.Store, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run checks the configuration against the IdP, starts the server and blocks
// until shutdown is requested
func (app *Application) Run() error {
	if app.cfg.SelfCheck.Enabled {
		if err := app.SelfCheck(context.Background()); err != nil {
			_ = app.db.Close()
			return err
		}
		app.logger.Info("self-check passed")
	}

	app.logger.Info("authgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.Store.Driver,
		"aselect_server", app.cfg.Siam.AselectServer,
	)

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

// SelfCheck signs and verifies a throwaway token with each builder and asks
// the IdP for a passive authn redirect.
func (app *Application) SelfCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, selfCheckTimeout)
	defer cancel()

	if err := app.selfCheck.Run(slogx.WithContext(ctx, app.logger)); err != nil {
		return fmt.Errorf("self-check failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authgate...")

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

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authgate stopped")
	return nil
}

// Close releases the store of an application that was never Run.
func (app *Application) Close() error { return app.db.Close() }

func (app *Application) Logger() *slog.Logger          { return app.logger }
func (app *Application) Handler() http.Handler         { return app.router }
func (app *Application) Authz() *service.AuthzService  { return app.authzService }
func (app *Application) Tokens() *service.TokenService { return app.tokenService }

// OpenStore opens the configured authorization store and applies its
// migrations.
func OpenStore(ctx context.Context, cfg StoreConfig, logger *slog.Logger) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = sqlite.NewStore(sqlite.FileDSN(cfg.DatabaseFile))
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL, postgres.Options{MaxConns: cfg.MaxConns})
	case DriverBolt:
		db, err = bolt.NewStore(cfg.BoltFile)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Driver, err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "driver", cfg.Driver)
	return db, nil
}

// initTokens builds the access and refresh builders. Each gets its own
// configuration.
func (app *Application) initTokens() error {
	access, err := jwtx.NewAccessBuilder(app.cfg.Tokens.Access())
	if err != nil {
		return fmt.Errorf("failed to initialize access tokens: %w", err)
	}
	refresh, err := jwtx.NewRefreshBuilder(app.cfg.Tokens.Refresh())
	if err != nil {
		return fmt.Errorf("failed to initialize refresh tokens: %w", err)
	}
	app.access, app.refresh = access, refresh

	for name, secret := range map[string]string{
		"AUTH_ACCESS_SECRET":  app.cfg.Tokens.AccessSecret,
		"AUTH_REFRESH_SECRET": app.cfg.Tokens.RefreshSecret,
	} {
		if cryptox.WeakSecret(secret, access.Algorithm()) {
			app.logger.Warn("token secret is shorter than recommended",
				slog.String("setting", name),
				slog.String("algorithm", access.Algorithm()),
				slog.Int("recommended_bytes", cryptox.SecretSize(access.Algorithm())),
			)
		}
	}
	return nil
}

// initGateway builds the SIAM client with metrics on the app registry.
func (app *Application) initGateway() error {
	metrics := siam.NewMetrics(app.registry)

	transport, err := siam.NewHTTPTransport(app.cfg.Siam.URL, siam.WithMetrics(metrics))
	if err != nil {
		return fmt.Errorf("failed to initialize SIAM transport: %w", err)
	}

	app.gateway = siam.NewClient(app.cfg.Siam.Identity(), transport).
		WithTimeout(app.cfg.Siam.Timeout()).
		WithMetrics(metrics)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	auditLog := audit.New(app.logger)

	app.authzService = &service.AuthzService{Store: app.db}
	app.sessionService = &service.SessionService{
		Gateway:       app.gateway,
		Refresh:       app.refresh,
		Audit:         auditLog,
		AselectServer: app.cfg.Siam.AselectServer,
	}
	app.tokenService = &service.TokenService{
		Refresh:       app.refresh,
		Access:        app.access,
		Authz:         app.authzService,
		Audit:         auditLog,
		MaxSessionAge: app.cfg.Tokens.MaxSessionAge,
	}
	app.selfCheck = &service.SelfCheck{
		Access:   app.access,
		Refresh:  app.refresh,
		Gateway:  app.gateway,
		Callback: app.cfg.SelfCheck.Callback,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.access,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.SessionService = app.sessionService
	router.TokenService = app.tokenService
	router.AuthzService = app.authzService
	router.SelfCheck = app.selfCheck
	router.RateLimits = &httpapi.RateLimits{
		Login:  app.cfg.RateLimit.Login.rate(),
		Tokens: app.cfg.RateLimit.Tokens.rate(),
		Admin:  app.cfg.RateLimit.Admin.rate(),
		Health: app.cfg.RateLimit.Health.rate(),
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
