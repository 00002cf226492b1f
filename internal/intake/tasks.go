package intake

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"overloader/internal/logging"
)

// DefaultMaxConcurrent bounds background processing when no limit is configured.
const DefaultMaxConcurrent = 4

// ErrTaskSetClosed is returned when work is submitted after shutdown began.
var ErrTaskSetClosed = errors.New("task set closed")

// TaskSet runs detached background tasks with bounded concurrency.
type TaskSet struct {
	sem    *semaphore.Weighted
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	inFlight atomic.Int64
	started  atomic.Int64
}

// NewTaskSet creates a TaskSet running at most limit tasks at once.
func NewTaskSet(limit int, logger *slog.Logger) *TaskSet {
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	return &TaskSet{
		sem:    semaphore.NewWeighted(int64(limit)),
		logger: logging.NewComponentLogger(logger, "tasks"),
	}
}

// Go schedules fn without blocking the caller. Tasks beyond the limit wait
// for a slot; a task whose context ends while waiting never runs.
func (t *TaskSet) Go(ctx context.Context, fn func(context.Context)) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTaskSetClosed
	}
	t.wg.Add(1)
	t.mu.Unlock()

	t.inFlight.Add(1)
	t.started.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.inFlight.Add(-1)

		if err := t.sem.Acquire(ctx, 1); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, t.logger), "task dropped before start", "task_dropped",
				logging.Error(err),
				logging.String(logging.FieldImpact, "workout left for the next sync"),
				logging.String(logging.FieldErrorHint, "daemon shutting down or overloaded"),
			)
			return
		}
		defer t.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				logging.ErrorWithContext(logging.WithContext(ctx, t.logger), "task panicked", "task_panic",
					logging.Any("panic", r),
				)
			}
		}()
		fn(ctx)
	}()
	return nil
}

// InFlight reports tasks that are queued or running.
func (t *TaskSet) InFlight() int {
	return int(t.inFlight.Load())
}

// Started reports the number of tasks accepted since creation.
func (t *TaskSet) Started() int64 {
	return t.started.Load()
}

// Close stops accepting new tasks.
func (t *TaskSet) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// Wait blocks until every accepted task finished or ctx ends.
func (t *TaskSet) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
