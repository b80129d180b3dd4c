package task

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a minimal Task implementation for queue and pool tests.
type stubTask struct {
	id       uuid.UUID
	taskType string
	execute  func(ctx context.Context) error

	executions atomic.Int32
}

func newStubTask() *stubTask {
	return &stubTask{id: uuid.New(), taskType: "stub"}
}

func (t *stubTask) ID() uuid.UUID { return t.id }

func (t *stubTask) Type() string { return t.taskType }

func (t *stubTask) Execute(ctx context.Context) error {
	t.executions.Add(1)
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func TestTaskQueueEnqueueDequeue(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, nil)
	first := newStubTask()
	second := newStubTask()

	require.NoError(t, queue.Enqueue(first))
	require.NoError(t, queue.Enqueue(second))

	assert.Equal(t, first.ID(), (<-queue.GetChannel()).ID())
	assert.Equal(t, second.ID(), (<-queue.GetChannel()).ID())
}

func TestTaskQueueFullShedsTask(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	require.NoError(t, queue.Enqueue(newStubTask()))

	err := queue.Enqueue(newStubTask())
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueEnqueueAfterClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	queue.Close()

	err := queue.Enqueue(newStubTask())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestTaskQueueCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, nil)
	queue.Close()

	assert.NotPanics(t, func() { queue.Close() })
}

func TestTaskQueueCloseDrainsBufferedTasks(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, nil)
	buffered := newStubTask()
	require.NoError(t, queue.Enqueue(buffered))
	queue.Close()

	received, ok := <-queue.GetChannel()
	require.True(t, ok, "buffered task survives Close")
	assert.Equal(t, buffered.ID(), received.ID())

	_, ok = <-queue.GetChannel()
	assert.False(t, ok, "channel is closed after the buffer drains")
}
