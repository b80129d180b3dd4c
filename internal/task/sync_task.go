package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	syncsvc "github.com/kaniwani/kw-api/internal/service/sync"
)

// UserSyncer runs a sync pass for a single user.
type UserSyncer interface {
	SyncUser(ctx context.Context, userID uuid.UUID, full bool) (syncsvc.Result, error)
}

// ProfileSyncTask synchronizes one user's profile and reviews with the
// remote provider.
type ProfileSyncTask struct {
	id     uuid.UUID
	userID uuid.UUID
	full   bool
	syncer UserSyncer
	logger *slog.Logger
}

// Ensure ProfileSyncTask implements the Task interface
var _ Task = (*ProfileSyncTask)(nil)

// ID returns the task's unique identifier
func (t *ProfileSyncTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ProfileSyncTask) Type() string {
	return TaskTypeProfileSync
}

// Execute runs the sync pass. A pass with an unsynced profile is not an
// error here: the cause is already recorded on the profile and in the
// logs, and failing the task would only re-log it.
func (t *ProfileSyncTask) Execute(ctx context.Context) error {
	result, err := t.syncer.SyncUser(ctx, t.userID, t.full)
	if err != nil {
		return fmt.Errorf("sync failed for user %s: %w", t.userID, err)
	}

	t.logger.Debug("profile sync task finished",
		"user_id", t.userID,
		"profile_synced", result.ProfileSynced,
		"new_reviews", result.NewReviews)
	return nil
}

// ProfileSyncTaskFactory creates ProfileSyncTask instances bound to the
// shared syncer.
type ProfileSyncTaskFactory struct {
	syncer UserSyncer
	logger *slog.Logger
}

// NewProfileSyncTaskFactory creates a factory for profile sync tasks.
// Panics if syncer is nil. If logger is nil, a default logger will be used.
func NewProfileSyncTaskFactory(syncer UserSyncer, logger *slog.Logger) *ProfileSyncTaskFactory {
	if syncer == nil {
		panic("syncer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileSyncTaskFactory{
		syncer: syncer,
		logger: logger.With(slog.String("component", "profile_sync_task")),
	}
}

// CreateTask creates a sync task for the given user.
func (f *ProfileSyncTaskFactory) CreateTask(userID uuid.UUID, full bool) (Task, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID cannot be nil")
	}
	return &ProfileSyncTask{
		id:     uuid.New(),
		userID: userID,
		full:   full,
		syncer: f.syncer,
		logger: f.logger,
	}, nil
}
