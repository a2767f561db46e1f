package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/tokengate/internal/auth/http"
	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          *sqlite.Store
	revocations store.Revocations
	redis       *goredis.Client // nil unless the redis backend is selected
	keys        *Keys
	registry    *prometheus.Registry
	metrics     *service.Metrics

	// Services
	credentials         *service.CredentialService
	sessions            *service.SessionService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// ctx bounds startup only: connecting to Redis and seeding users.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tokengate",
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
	app.metrics = service.NewMetrics(app.registry, cfg.MetricsNamespace)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initRevocations(ctx); err != nil {
		app.closeStores()
		return nil, err
	}

	keys, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keys = keys

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.seedUsers(ctx); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	tls := app.cfg.TLSCertFile != ""
	app.logger.Info("tokengate starting",
		"addr", app.cfg.Addr,
		"tls", tls,
		"revocation_backend", app.cfg.RevocationBackend,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		if tls {
			serverErrors <- app.server.ListenAndServeTLS(app.cfg.TLSCertFile, app.cfg.TLSKeyFile)
			return
		}
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
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
	app.logger.Info("shutting down tokengate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("tokengate stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sqliteDSN adds a busy timeout and WAL to file databases.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// initDatabase opens the user database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqliteDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "path", app.cfg.DatabaseFile)
	return nil
}

// initRevocations picks where revoked token ids live.
func (app *Application) initRevocations(ctx context.Context) error {
	if app.cfg.RevocationBackend != BackendRedis {
		app.revocations = app.db.Revocations()
		return nil
	}

	client, err := redis.Connect(ctx, app.cfg.RedisAddr, app.cfg.RedisConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect revocation store: %w", err)
	}
	app.redis = client
	app.revocations = redis.NewRevocations(client)

	app.logger.Info("redis revocation store connected", "addr", app.cfg.RedisAddr)
	return nil
}

func (app *Application) hasher() (cryptox.Argon2, error) {
	var pepper string
	if app.cfg.PepperFile != "" {
		data, err := os.ReadFile(app.cfg.PepperFile)
		if err != nil {
			return cryptox.Argon2{}, fmt.Errorf("failed to read pepper: %w", err)
		}
		pepper = strings.TrimSpace(string(data))
	}

	h := cryptox.DefaultArgon2(pepper)
	h.Memory = uint32(app.cfg.Argon2Memory)
	h.Iterations = uint32(app.cfg.Argon2Iterations)
	return h, nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	hasher, err := app.hasher()
	if err != nil {
		return err
	}

	app.credentials = service.NewCredentialService(app.db, hasher)
	app.sessions = &service.SessionService{
		AccessFactory:  service.AccessTokenFactory{TTL: app.cfg.AccessTTL},
		RefreshFactory: service.RefreshTokenFactory{TTL: app.cfg.RefreshTTL},
		AccessCodec:    service.NewJWTCodec(app.keys.Access),
		RefreshCodec:   service.NewJWTCodec(app.keys.Refresh),
		Revocations:    app.revocations,
		Metrics:        app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = app.metrics
	return nil
}

// seedUsers creates the configured users that do not exist yet. Existing
// users keep their stored password.
func (app *Application) seedUsers(ctx context.Context) error {
	for _, su := range app.cfg.SeedUsers {
		_, inserted, err := app.credentials.EnsureUser(ctx, su.Username, su.Password, su.Authorities)
		if err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		if inserted {
			app.logger.Info("seeded user", "username", su.Username, "authorities", su.Authorities)
		}
	}

	if n, err := app.db.Users().CountUsers(ctx); err == nil && n == 0 {
		app.logger.Warn("no users exist; set AUTH_SEED_USERS to create some")
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.AccessKeys,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Classifier = service.NewClassifier(app.sessions.AccessCodec, app.sessions.RefreshCodec, app.logger)
	router.Verifier = &service.Verifier{Revocations: app.revocations, Metrics: app.metrics}
	router.Sessions = app.sessions
	router.Credentials = app.credentials
	if pinger, ok := app.revocations.(httpapi.Pinger); ok && app.redis != nil {
		router.RevocationPinger = pinger
	}
	router.Metrics = httpx.NewMetrics(app.registry, app.cfg.MetricsNamespace)
	router.Gatherer = app.registry
	router.RateLimits = httpapi.RateLimits{
		Login:   httpx.RateLimitFromEnv("LOGIN", httpx.StrictLimit),
		Session: httpx.RateLimitFromEnv("SESSION", httpx.ModerateLimit),
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
