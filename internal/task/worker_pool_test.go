package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesTasks(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(4, nil)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, nil)

	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		task := newStubTask()
		task.execute = func(ctx context.Context) error {
			done <- struct{}{}
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}

	pool.Start()
	defer pool.Stop()

	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for task execution")
		}
	}
}

func TestWorkerPoolInvokesErrorHandler(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, nil)

	taskErr := errors.New("boom")
	failing := newStubTask()
	failing.execute = func(ctx context.Context) error { return taskErr }

	handled := make(chan error, 1)
	pool.SetErrorHandler(func(task Task, err error) {
		handled <- err
	})

	require.NoError(t, queue.Enqueue(failing))
	pool.Start()
	defer pool.Stop()

	select {
	case err := <-handled:
		assert.ErrorIs(t, err, taskErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestWorkerPoolStopWaitsForInFlightTask(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, nil)

	started := make(chan struct{})
	var mu sync.Mutex
	finished := false

	task := newStubTask()
	task.execute = func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	}

	require.NoError(t, queue.Enqueue(task))
	pool.Start()

	<-started
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, finished, "Stop returns only after the in-flight task completes")
}

func TestWorkerPoolStopsWhenQueueCloses(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, nil)

	pool.Start()
	queue.Close()

	stopped := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after the queue closed")
	}
}

func TestWorkerPoolDefaultsInvalidWorkerCount(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 0}, nil)

	assert.Equal(t, 1, pool.workerCount)
}
