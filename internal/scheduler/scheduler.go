// Package scheduler drives the periodic background work: per-profile sync
// passes, due-review flagging, and catalog refreshes, enqueued onto the
// task queue on fixed intervals.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/store"
	"github.com/kaniwani/kw-api/internal/task"
)

// Config holds the scheduling intervals.
type Config struct {
	// SyncInterval is how often a sync pass is enqueued for every
	// eligible profile.
	SyncInterval time.Duration

	// DueFlagInterval is how often overdue reviews are flagged.
	DueFlagInterval time.Duration

	// CatalogRefreshInterval is how often the shared vocabulary catalog
	// is reconciled. Zero disables catalog refreshes, for deployments
	// without a service-level credential.
	CatalogRefreshInterval time.Duration

	// FullSync makes every scheduled pass a full one instead of an
	// incremental one.
	FullSync bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		SyncInterval:           2 * time.Hour,
		DueFlagInterval:        15 * time.Minute,
		CatalogRefreshInterval: 24 * time.Hour,
	}
}

// Scheduler enqueues the periodic background tasks.
type Scheduler struct {
	cron      *gocron.Scheduler
	profiles  store.ProfileStore
	queue     task.TaskQueueWriter
	syncTasks *task.ProfileSyncTaskFactory
	flagger   task.DueReviewFlagger
	refresher task.CatalogRefresher
	config    Config
	logger    *slog.Logger
}

// New creates a Scheduler. The refresher may be nil when catalog
// refreshes are disabled; everything else panics on nil.
// If logger is nil, a default logger will be used.
func New(
	profiles store.ProfileStore,
	queue task.TaskQueueWriter,
	syncTasks *task.ProfileSyncTaskFactory,
	flagger task.DueReviewFlagger,
	refresher task.CatalogRefresher,
	config Config,
	logger *slog.Logger,
) *Scheduler {
	if profiles == nil {
		panic("profiles store cannot be nil")
	}
	if queue == nil {
		panic("task queue cannot be nil")
	}
	if syncTasks == nil {
		panic("sync task factory cannot be nil")
	}
	if flagger == nil {
		panic("flagger cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:      gocron.NewScheduler(time.UTC),
		profiles:  profiles,
		queue:     queue,
		syncTasks: syncTasks,
		flagger:   flagger,
		refresher: refresher,
		config:    config,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
}

// Start registers the periodic jobs and begins running them in the
// background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(s.config.SyncInterval).Do(s.enqueueSyncAll); err != nil {
		return err
	}
	if _, err := s.cron.Every(s.config.DueFlagInterval).Do(s.enqueueDueFlag); err != nil {
		return err
	}
	if s.refresher != nil && s.config.CatalogRefreshInterval > 0 {
		if _, err := s.cron.Every(s.config.CatalogRefreshInterval).Do(s.enqueueCatalogRefresh); err != nil {
			return err
		}
	}

	s.cron.StartAsync()
	s.logger.Info("scheduler started",
		slog.Duration("sync_interval", s.config.SyncInterval),
		slog.Duration("due_flag_interval", s.config.DueFlagInterval))
	return nil
}

// Stop halts the scheduler. Already-enqueued tasks are left to the
// worker pool.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

// enqueueSyncAll enqueues one sync task per eligible profile. Profiles
// with a rejected credential or on vacation are not eligible and get no
// task at all.
func (s *Scheduler) enqueueSyncAll() {
	ctx := context.Background()

	profiles, err := s.profiles.ListSyncEligible(ctx)
	if err != nil {
		s.logger.Error("failed to list sync-eligible profiles",
			slog.String("error", err.Error()))
		return
	}

	enqueued := 0
	for _, profile := range profiles {
		t, err := s.syncTasks.CreateTask(profile.UserID, s.config.FullSync)
		if err != nil {
			s.logger.Error("failed to create sync task",
				slog.String("user_id", profile.UserID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := s.queue.Enqueue(t); err != nil {
			// Shed the rest of the batch; the next tick retries everyone.
			s.logger.Warn("task queue rejected sync task, stopping batch",
				slog.String("error", err.Error()),
				slog.Int("enqueued", enqueued))
			return
		}
		enqueued++
	}

	s.logger.Info("enqueued sync tasks", slog.Int("count", enqueued))
}

func (s *Scheduler) enqueueDueFlag() {
	t := task.NewDueReviewFlagTask(s.flagger, s.logger)
	if err := s.queue.Enqueue(t); err != nil {
		s.logger.Warn("task queue rejected due-review flag task",
			slog.String("error", err.Error()))
	}
}

func (s *Scheduler) enqueueCatalogRefresh() {
	t := task.NewCatalogRefreshTask(s.refresher, wanikani.SubjectFilter{
		Types: []string{wanikani.SubjectTypeVocabulary},
	})
	if err := s.queue.Enqueue(t); err != nil {
		s.logger.Warn("task queue rejected catalog refresh task",
			slog.String("error", err.Error()))
	}
}
