package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/paramretry/internal/core/worker"
	"github.com/vietddude/paramretry/internal/health"
	redisclient "github.com/vietddude/paramretry/internal/infra/redis"
	"github.com/vietddude/paramretry/internal/infra/storage"
	"github.com/vietddude/paramretry/internal/infra/storage/memory"
	"github.com/vietddude/paramretry/internal/infra/storage/postgres"
	"github.com/vietddude/paramretry/internal/runner"
)

// App owns the report store, the flaky tracker and the health server.
type App struct {
	cfg          Config
	reports      storage.ReportRepository
	db           *postgres.DB
	redisClient  *redisclient.Client
	healthMon    *health.Monitor
	healthServer *health.Server
	pruner       *worker.Pruner
	cancel       context.CancelFunc
	log          *slog.Logger
}

// NewApp connects the configured backends. Without a database URL reports
// are kept in memory; without a Redis URL flaky tuples are not tracked.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	app := &App{
		cfg: cfg,
		log: slog.Default().With("component", "control"),
	}

	var pinger health.Pinger
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		app.db = db
		app.reports = postgres.NewReportRepo(db)
		pinger = db
		app.log.Info("Using PostgreSQL storage")
	} else {
		app.reports = memory.NewReportRepo()
		app.log.Info("Using Memory storage")
	}

	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = client
		app.log.Info("Tracking flaky tuples in Redis")
	}

	app.healthMon = health.NewMonitor(app.reports, pinger)
	app.healthServer = health.NewServer(app.healthMon, app.reports, cfg.Port)
	app.pruner = worker.NewPruner(cfg.Retention, app.reports)
	return app, nil
}

// Reports returns the run report store.
func (a *App) Reports() storage.ReportRepository {
	return a.reports
}

// Redis returns the Redis client, or nil when Redis is not configured.
func (a *App) Redis() *redisclient.Client {
	return a.redisClient
}

// RunnerOptions returns the options publishing runs to the app's backends.
func (a *App) RunnerOptions() []runner.Option {
	opts := []runner.Option{runner.WithReports(a.reports)}
	if a.redisClient != nil {
		opts = append(opts, runner.WithFlakySink(a.redisClient))
	}
	return opts
}

// Health returns the current health report.
func (a *App) Health(ctx context.Context) *health.HealthReport {
	return a.healthMon.CheckHealth(ctx)
}

// Start starts the health server and the report pruner in the background.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)
	go a.pruner.Start(ctx)

	go func() {
		a.log.Info("Health server listening", "port", a.cfg.Port)
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Health server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the health server down and closes the backends.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping...")
	if a.cancel != nil {
		a.cancel()
	}
	err := a.healthServer.Stop(ctx)
	a.Close()
	return err
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("Failed to close database", "error", err)
		}
	}
}
