// Package task provides the background work machinery for the sync
// engine: a bounded in-memory queue, a worker pool with graceful
// shutdown, and the task types the scheduler enqueues.
package task
