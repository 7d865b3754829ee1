// Package control wires configuration, RPC plumbing, storage and the watch
// loop into a runnable application.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/noncegap/internal/analysis/health"
	"github.com/vietddude/noncegap/internal/analysis/monitor"
	"github.com/vietddude/noncegap/internal/core/config"
	"github.com/vietddude/noncegap/internal/infra/chain/evm"
	redisclient "github.com/vietddude/noncegap/internal/infra/redis"
	"github.com/vietddude/noncegap/internal/infra/rpc"
	"github.com/vietddude/noncegap/internal/infra/rpc/provider"
	"github.com/vietddude/noncegap/internal/infra/rpc/quota"
	"github.com/vietddude/noncegap/internal/infra/rpc/routing"
	"github.com/vietddude/noncegap/internal/infra/storage"
	"github.com/vietddude/noncegap/internal/infra/storage/memory"
	"github.com/vietddude/noncegap/internal/infra/storage/postgres"
)

// Config holds the application configuration.
type Config struct {
	Port     int
	Chain    config.ChainConfig
	Watch    config.WatchConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// App manages the watcher lifecycle.
type App struct {
	cfg          Config
	client       *rpc.Client
	fetcher      *evm.Fetcher
	monitor      *monitor.Monitor
	store        storage.ReportRepository
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewFetcher builds the RPC stack for one chain: providers with quota
// accounting behind a failover router, wrapped in a snapshot fetcher.
// The returned client owns the provider connections.
func NewFetcher(chain config.ChainConfig) (*evm.Fetcher, *rpc.Client, error) {
	if len(chain.Providers) == 0 {
		return nil, nil, fmt.Errorf("no providers configured for chain %s", chain.ID)
	}

	limits := make(map[string]int, len(chain.Providers))
	for _, p := range chain.Providers {
		limits[p.Name] = p.DailyQuota
	}
	tracker := quota.NewTracker(limits)

	router := routing.NewRouter(tracker)
	for _, p := range chain.Providers {
		router.AddProvider(provider.NewHTTPProvider(p.Name, p.URL, p.Timeout))
	}

	client := rpc.NewClient(router, tracker)
	return evm.NewFetcher(chain.ID, client), client, nil
}

// NewApp creates an App with all dependencies initialized.
func NewApp(cfg Config) (*App, error) {
	app := &App{
		cfg: cfg,
		log: slog.Default(),
	}

	// 1. RPC stack + fetcher
	fetcher, client, err := NewFetcher(cfg.Chain)
	if err != nil {
		return nil, err
	}
	app.fetcher = fetcher
	app.client = client

	// 2. Storage
	var store storage.ReportRepository
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		app.db = db

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		store = postgres.NewReportRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store = memory.NewReportRepo()
		slog.Info("Using Memory storage")
	}
	app.store = store

	// 3. Optional report cache
	var cache monitor.ReportCache
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = rc
		cache = redisclient.NewReportCache(rc, cfg.Chain.ID, cfg.Watch.HistoryTTL)
		slog.Info("Report cache enabled")
	}

	// 4. Watch monitor
	app.monitor = monitor.New(monitor.Config{
		ChainID:   cfg.Chain.ID,
		Addresses: cfg.Watch.Addresses,
		Interval:  cfg.Watch.Interval,
	}, fetcher, store, cache)

	// 5. Health server; a scan is stale after three missed intervals
	healthMon := health.NewMonitor(app.monitor, 3*cfg.Watch.Interval)
	app.healthServer = health.NewServer(healthMon, cfg.Port)

	return app, nil
}

// Start launches the watch loop and the health server.
func (a *App) Start(ctx context.Context) error {
	if len(a.cfg.Watch.Addresses) == 0 {
		return fmt.Errorf("no watch addresses configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func() {
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	go func() {
		defer close(a.done)
		_ = a.monitor.Run(runCtx)
	}()

	go a.pruneLoop(runCtx)

	a.log.Info("Watcher started",
		"chain", a.cfg.Chain.ID,
		"addresses", len(a.cfg.Watch.Addresses),
		"port", a.cfg.Port)
	return nil
}

// Stop gracefully shuts everything down.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	if a.done != nil {
		select {
		case <-a.done:
		case <-ctx.Done():
			a.log.Warn("Watch loop did not stop in time")
		}
	}

	if err := a.healthServer.Stop(ctx); err != nil {
		a.log.Warn("Health server shutdown failed", "error", err)
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	return nil
}

// Monitor returns the watch monitor, for status queries.
func (a *App) Monitor() *monitor.Monitor {
	return a.monitor
}

// Store returns the report repository, for history queries.
func (a *App) Store() storage.ReportRepository {
	return a.store
}

// pruneLoop deletes stored reports older than the history TTL once an hour.
func (a *App) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-a.cfg.Watch.HistoryTTL).Unix()
			deleted, err := a.store.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				a.log.Warn("Report pruning failed", "error", err)
				continue
			}
			if deleted > 0 {
				a.log.Info("Pruned old reports", "deleted", deleted)
			}
		}
	}
}
