package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/kaniwani/kw-api/internal/config"
	"github.com/kaniwani/kw-api/internal/domain/srs"
	"github.com/kaniwani/kw-api/internal/platform/postgres"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/scheduler"
	syncsvc "github.com/kaniwani/kw-api/internal/service/sync"
	"github.com/kaniwani/kw-api/internal/task"
	"github.com/kaniwani/kw-api/migrations"
)

// app holds the wired application components and their shutdown order.
type app struct {
	db        *sql.DB
	queue     *task.TaskQueue
	pool      *task.WorkerPool
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
}

// newApp wires the application: database and migrations, stores, the
// scheduling engine, the syncer, and the background task machinery.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := openDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	profileStore := postgres.NewPostgresProfileStore(db, logger)
	vocabStore := postgres.NewPostgresVocabularyStore(db, logger)
	reviewStore := postgres.NewPostgresReviewStore(db, logger)

	srsService := srs.NewDefaultService()

	clientFactory := func(apiKey string) wanikani.Client {
		return newHTTPClient(cfg.Wanikani.BaseURL, apiKey)
	}

	syncer := syncsvc.NewSyncer(
		profileStore,
		vocabStore,
		reviewStore,
		clientFactory,
		srsService,
		logger,
	)

	queue := task.NewTaskQueue(cfg.Sync.QueueSize, logger)
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{
		WorkerCount: cfg.Sync.WorkerCount,
	}, logger)

	syncTasks := task.NewProfileSyncTaskFactory(syncer, logger)

	// Catalog refresh needs a service-level credential; without one the
	// scheduler simply never enqueues refreshes.
	var refresher task.CatalogRefresher
	if cfg.Wanikani.CatalogAPIKey != "" {
		refresher = syncsvc.NewCatalogRefresher(
			db,
			vocabStore,
			clientFactory(cfg.Wanikani.CatalogAPIKey),
			logger,
		)
	} else {
		logger.Warn("no catalog API key configured, catalog refresh disabled")
	}

	sched := scheduler.New(
		profileStore,
		queue,
		syncTasks,
		syncer,
		refresher,
		scheduler.Config{
			SyncInterval:           time.Duration(cfg.Sync.IntervalMinutes) * time.Minute,
			DueFlagInterval:        time.Duration(cfg.Sync.DueFlagIntervalMinutes) * time.Minute,
			CatalogRefreshInterval: time.Duration(cfg.Sync.CatalogRefreshIntervalHours) * time.Hour,
			FullSync:               cfg.Sync.FullSync,
		},
		logger,
	)

	return &app{
		db:        db,
		queue:     queue,
		pool:      pool,
		scheduler: sched,
		logger:    logger,
	}, nil
}

// Start launches the worker pool and the scheduler.
func (a *app) Start() error {
	a.pool.Start()
	if err := a.scheduler.Start(); err != nil {
		a.pool.Stop()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	a.logger.Info("sync daemon started")
	return nil
}

// Stop shuts the application down in reverse dependency order: no new
// tasks, drain the workers, then release the database.
func (a *app) Stop() {
	a.scheduler.Stop()
	a.queue.Close()
	a.pool.Stop()
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
	a.logger.Info("sync daemon stopped")
}

// openDatabase connects to PostgreSQL, verifies the connection, and
// applies any pending migrations.
func openDatabase(cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("database ready")
	return db, nil
}
