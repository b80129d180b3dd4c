package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TaskTypeProfileSync runs a sync pass for one user.
	TaskTypeProfileSync = "profile_sync"

	// TaskTypeCatalogRefresh reconciles the shared vocabulary catalog.
	TaskTypeCatalogRefresh = "catalog_refresh"

	// TaskTypeDueReviewFlag flags reviews whose scheduled time has passed.
	TaskTypeDueReviewFlag = "due_review_flag"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel,
// allowing workers to consume tasks without the ability to enqueue.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue,
// allowing the scheduler to enqueue tasks for processing.
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}
