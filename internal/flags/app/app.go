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

	"github.com/aussiebroadwan/flagtree/internal/flags/cache"
	httpapi "github.com/aussiebroadwan/flagtree/internal/flags/http"
	"github.com/aussiebroadwan/flagtree/internal/flags/service"
	"github.com/aussiebroadwan/flagtree/internal/flags/store"
	"github.com/aussiebroadwan/flagtree/internal/flags/store/drivers/sqlite"
	"github.com/aussiebroadwan/flagtree/pkg/jwtx"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	redisKeyPrefix = "flagtree"
)

// Application wires the flag service and owns its background workers.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	cacheStore  cache.Store
	redisClient *redis.Client // nil unless the redis cache driver is selected
	keys        *jwtx.KeySet
	verifier    jwtx.Verifier
	jwksFetcher *jwtx.JWKSFetcher

	// Services
	flagService  *service.FlagService
	usageLogger  *service.UsageLogger
	auditService *service.AuditService

	// HTTP server
	server *http.Server
	router *httpapi.Router

	stopFetcher context.CancelFunc
	fetcherDone chan struct{}
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "flag-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCache(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initKeys(ctx)
	app.initServices()

	if cfg.SeedSystemFlags {
		if err := app.seedSystemFlags(ctx); err != nil {
			app.closeStores()
			return nil, fmt.Errorf("failed to seed system flags: %w", err)
		}
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.usageLogger.Start()
	app.auditService.Start()

	fetchCtx, cancel := context.WithCancel(context.Background())
	app.stopFetcher = cancel
	app.fetcherDone = make(chan struct{})
	go func() {
		defer close(app.fetcherDone)
		app.jwksFetcher.Run(slogx.WithContext(fetchCtx, app.logger), app.cfg.JWKSRefresh)
	}()

	app.logger.Info("flag service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
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
	app.logger.Info("shutting down flag service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.stopFetcher != nil {
		app.stopFetcher()
		<-app.fetcherDone
	}
	app.auditService.Stop()
	app.usageLogger.Stop() // drains queued usage events

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("flag service stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	}

	db, err := sqlite.NewStore(dsn)
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

// initCache selects the snapshot cache backend.
func (app *Application) initCache(ctx context.Context) error {
	switch app.cfg.CacheDriver {
	case cache.DriverMemory:
		app.cacheStore = cache.NewMemory()
	case cache.DriverNone:
		app.cacheStore = cache.NewNoop()
	case cache.DriverRedis:
		client, err := cache.Connect(ctx, cache.RedisConfig{
			URL:            app.cfg.RedisURL,
			ConnectTimeout: app.cfg.RedisConnectTimeout,
			RetryAttempts:  app.cfg.RedisRetryAttempts,
			RetryInterval:  app.cfg.RedisRetryInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redisClient = client
		app.cacheStore = cache.NewRedis(client, redisKeyPrefix)
	default:
		return fmt.Errorf("%w: %q", cache.ErrUnknownDriver, app.cfg.CacheDriver)
	}

	app.logger.Info("flag cache ready", "driver", app.cfg.CacheDriver, "ttl", app.cfg.CacheTTL)
	return nil
}

// initKeys loads the auth service's verification keys. A failed first load
// is not fatal: the refresh loop keeps retrying and /readyz reports the gap.
func (app *Application) initKeys(ctx context.Context) {
	app.keys = jwtx.NewKeySet()
	app.verifier = jwtx.NewVerifier(app.keys, jwtx.VerifyOptions{
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
		Leeway:   30 * time.Second,
	})
	app.jwksFetcher = jwtx.NewJWKSFetcher(app.cfg.JWKSURL, app.keys)

	if err := app.jwksFetcher.Refresh(slogx.WithContext(ctx, app.logger)); err != nil {
		app.logger.Warn("initial JWKS load failed, will retry", "source", app.cfg.JWKSURL, "error", err)
		return
	}
	app.logger.Info("verification keys loaded", "source", app.cfg.JWKSURL, "keys", len(app.keys.JWKS().Keys))
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.flagService = service.NewFlagService(
		app.db,
		cache.NewSnapshots(app.cacheStore, app.cfg.CacheTTL),
		app.cfg.MaxDepth,
	)

	app.usageLogger = service.NewUsageLogger(app.logger, app.cfg.UsageBuffer)

	app.auditService = service.NewAuditService(
		app.flagService,
		app.logger,
		app.cfg.AuditInterval,
	)
}

// seedSystemFlags creates the flags the service evaluates against itself.
// Existing flags are left as operators set them.
func (app *Application) seedSystemFlags(ctx context.Context) error {
	ctx = slogx.WithContext(ctx, app.logger)

	_, err := app.flagService.Create(ctx, service.CreateFlagInput{
		Name:        httpapi.AuditFeatureFlag,
		DisplayName: "Hierarchy audit API",
		Description: "Serves GET /v1/flags/audit. Disable to hide the endpoint.",
	})
	switch {
	case errors.Is(err, service.ErrDuplicateFlagName):
		return nil
	case err != nil:
		return err
	}

	_, err = app.flagService.Update(ctx, httpapi.AuditFeatureFlag, true)
	return err
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.FlagService = app.flagService
	router.Usage = app.usageLogger
	if p, ok := app.cacheStore.(httpapi.Pinger); ok {
		router.Cache = p
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
