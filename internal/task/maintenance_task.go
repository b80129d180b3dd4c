package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	syncsvc "github.com/kaniwani/kw-api/internal/service/sync"
)

// CatalogRefresher reconciles the shared vocabulary catalog against the
// remote subject data.
type CatalogRefresher interface {
	Refresh(ctx context.Context, filter wanikani.SubjectFilter) (syncsvc.RefreshResult, error)
}

// CatalogRefreshTask refreshes the shared vocabulary catalog.
type CatalogRefreshTask struct {
	id        uuid.UUID
	refresher CatalogRefresher
	filter    wanikani.SubjectFilter
}

var _ Task = (*CatalogRefreshTask)(nil)

// NewCatalogRefreshTask creates a task that refreshes the catalog
// for the subjects matching the filter.
// Panics if refresher is nil.
func NewCatalogRefreshTask(refresher CatalogRefresher, filter wanikani.SubjectFilter) *CatalogRefreshTask {
	if refresher == nil {
		panic("refresher cannot be nil")
	}
	return &CatalogRefreshTask{
		id:        uuid.New(),
		refresher: refresher,
		filter:    filter,
	}
}

// ID returns the task's unique identifier
func (t *CatalogRefreshTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CatalogRefreshTask) Type() string {
	return TaskTypeCatalogRefresh
}

// Execute runs the catalog refresh
func (t *CatalogRefreshTask) Execute(ctx context.Context) error {
	if _, err := t.refresher.Refresh(ctx, t.filter); err != nil {
		return fmt.Errorf("catalog refresh failed: %w", err)
	}
	return nil
}

// DueReviewFlagger flags reviews whose scheduled time has passed.
type DueReviewFlagger interface {
	FlagDueReviews(ctx context.Context) (int64, error)
}

// DueReviewFlagTask flags every review whose scheduled time has passed
// as needing review. Runs for all users.
type DueReviewFlagTask struct {
	id      uuid.UUID
	flagger DueReviewFlagger
	logger  *slog.Logger
}

var _ Task = (*DueReviewFlagTask)(nil)

// NewDueReviewFlagTask creates a due-review flagging task.
// Panics if flagger is nil. If logger is nil, a default logger will be used.
func NewDueReviewFlagTask(flagger DueReviewFlagger, logger *slog.Logger) *DueReviewFlagTask {
	if flagger == nil {
		panic("flagger cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DueReviewFlagTask{
		id:      uuid.New(),
		flagger: flagger,
		logger:  logger.With(slog.String("component", "due_review_flag_task")),
	}
}

// ID returns the task's unique identifier
func (t *DueReviewFlagTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DueReviewFlagTask) Type() string {
	return TaskTypeDueReviewFlag
}

// Execute flags due reviews across all users
func (t *DueReviewFlagTask) Execute(ctx context.Context) error {
	flagged, err := t.flagger.FlagDueReviews(ctx)
	if err != nil {
		return fmt.Errorf("due review flagging failed: %w", err)
	}
	t.logger.Debug("flagged due reviews", "count", flagged)
	return nil
}
