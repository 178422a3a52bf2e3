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

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/audit"
	httpapi "github.com/mochizuki1122m/shodo-lpr/internal/lpr/http"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store/drivers/memory"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/store/drivers/redis"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the LPR service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	store    store.Store
	failover *store.Failover // nil when Redis is not configured
	memory   *memory.Store   // fallback (or sole) store, swept by housekeeping
	ring     *jwtx.Keyring

	// Audit sinks
	sink      audit.Sink
	auditDB   *audit.SQLiteSink // nil unless a durable trail is configured
	auditAMQP *audit.AMQPSink   // nil unless streaming is configured

	// Services
	issuer              *service.Issuer
	verifyService       *service.Verifier
	enforceService      *service.Verifier
	revoker             *service.Revoker
	limiter             *service.Limiter
	sessions            *service.SessionGrantor
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
			Service: "lpr-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	ring, err := InitSigningKeys(context.Background(), app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.ring = ring

	if err := app.initAudit(); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initServices()
	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("lpr service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"fail_open", app.cfg.FailOpen,
		"redis", app.cfg.RedisURL != "",
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
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down lpr service...")

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

	// Close audit sinks
	if app.auditAMQP != nil {
		if err := app.auditAMQP.Close(); err != nil {
			app.logger.Error("error closing amqp audit sink", "error", err)
		}
	}
	if app.auditDB != nil {
		if err := app.auditDB.Close(); err != nil {
			app.logger.Error("error closing audit database", "error", err)
		}
	}

	// Close store connections
	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("lpr service stopped")
	return nil
}

// initStore builds the revocation/rate-limit store. With Redis configured
// it is wrapped with the in-process fallback behind the fail policy;
// without it the in-process store serves alone.
func (app *Application) initStore() error {
	app.memory = memory.NewStore()

	if app.cfg.RedisURL == "" {
		app.store = app.memory
		app.logger.Info("store initialized", "backend", "memory")
		return nil
	}

	primary, err := redis.NewStore(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to initialize redis store: %w", err)
	}

	app.failover = store.NewFailover(primary, app.memory, app.cfg.FailOpen, app.logger)
	app.store = app.failover
	app.logger.Info("store initialized",
		"backend", "redis",
		"fail_open", app.cfg.FailOpen,
	)
	return nil
}

// closeStores releases store handles during failed startup.
func (app *Application) closeStores() {
	if app.store != nil {
		_ = app.store.Close()
	}
}

// initAudit assembles the audit fanout: structured log always, sqlite and
// amqp when configured.
func (app *Application) initAudit() error {
	sinks := []audit.Sink{audit.NewSlogSink(app.logger)}

	if app.cfg.AuditDBFile != "" {
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.AuditDBFile)
		db, err := audit.NewSQLiteSink(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize audit database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply audit migrations: %w", err)
		}
		app.auditDB = db
		sinks = append(sinks, db)
		app.logger.Info("durable audit trail enabled", "file", app.cfg.AuditDBFile)
	}

	if app.cfg.AuditAMQPURL != "" {
		mq, err := audit.NewAMQPSink(app.cfg.AuditAMQPURL, app.cfg.AuditAMQPExchange, "lpr.audit")
		if err != nil {
			if app.auditDB != nil {
				_ = app.auditDB.Close()
			}
			return fmt.Errorf("failed to initialize amqp audit sink: %w", err)
		}
		app.auditAMQP = mq
		sinks = append(sinks, mq)
		app.logger.Info("audit streaming enabled", "exchange", app.cfg.AuditAMQPExchange)
	}

	app.sink = audit.NewFanout(app.logger, sinks...)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.issuer = &service.Issuer{
		Ring:   app.ring,
		Store:  app.store,
		Audit:  app.sink,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.TokenTTL,
	}

	tokens := jwtx.NewVerifier(app.ring, jwtx.VerifyOptions{
		Issuer: app.cfg.Issuer,
	})

	// The public verify API surfaces the token's audience without pinning
	// one; the gateway pins the service this deployment fronts.
	app.verifyService = &service.Verifier{
		Tokens:       tokens,
		Store:        app.store,
		Audit:        app.sink,
		StrictDevice: app.cfg.DeviceStrict,
	}
	app.enforceService = &service.Verifier{
		Tokens:       tokens,
		Store:        app.store,
		Audit:        app.sink,
		Service:      app.cfg.Service,
		StrictDevice: app.cfg.DeviceStrict,
	}

	app.revoker = &service.Revoker{
		Store: app.store,
		Audit: app.sink,
	}
	app.limiter = &service.Limiter{Store: app.store}
	app.sessions = &service.SessionGrantor{
		Store: app.store,
		Token: app.cfg.SessionGrantToken,
		TTL:   app.cfg.SessionTTL,
	}

	// Interface must stay untyped-nil when no durable trail exists
	var pruner service.Pruner
	if app.auditDB != nil {
		pruner = app.auditDB
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.memory,
		pruner,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	upstream, err := httpapi.NewProxy(app.cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("failed to initialize gateway upstream: %w", err)
	}

	router := httpapi.NewRouter(
		app.ring,
		BuildVersion,
		app.store,
		app.failover,
		app.sink,
		app.logger,
	)

	// Wire services to router
	router.Issuer = app.issuer
	router.Revoker = app.revoker
	router.Limiter = app.limiter
	router.Sessions = app.sessions
	router.VerifyService = app.verifyService
	router.EnforceService = app.enforceService
	router.Upstream = upstream
	router.RedactFields = app.cfg.Policy.RedactFields
	router.ExemptPaths = app.cfg.Policy.ExemptPaths
	router.JitterMax = app.cfg.JitterMax
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
