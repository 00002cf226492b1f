package intake

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"overloader/internal/logging"
	"overloader/internal/services"
)

// Ticket acknowledges a submitted workout.
type Ticket struct {
	CorrelationID string
	WorkoutID     string
	// Skipped is set when the id was already processed and dedup is enabled.
	Skipped bool
}

// Dispatcher hands inbound completion events to background tasks.
type Dispatcher struct {
	base      context.Context
	processor *Processor
	tasks     *TaskSet
	dedup     bool
	logger    *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWebhookDedup makes Submit skip ids already in the dedup store.
func WithWebhookDedup(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.dedup = enabled
	}
}

// WithDispatchLogger sets the dispatcher logger.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher. Tasks run under base, not the request
// context, so they outlive the request that triggered them.
func NewDispatcher(base context.Context, processor *Processor, tasks *TaskSet, opts ...DispatcherOption) *Dispatcher {
	if base == nil {
		base = context.Background()
	}
	d := &Dispatcher{base: base, processor: processor, tasks: tasks}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "dispatch")
	return d
}

// Submit schedules processing of workoutID and returns immediately. Unless
// webhook dedup is enabled, every delivery is processed even when the id was
// seen before.
func (d *Dispatcher) Submit(ctx context.Context, workoutID, trigger string) (Ticket, error) {
	workoutID = strings.TrimSpace(workoutID)
	if workoutID == "" {
		return Ticket{}, services.Wrap(services.ErrValidation, "dispatch", "submit", "workout id is required", nil)
	}
	correlationID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		correlationID = uuid.NewString()
	}
	ticket := Ticket{CorrelationID: correlationID, WorkoutID: workoutID}

	taskCtx := services.WithRequestID(d.base, correlationID)
	taskCtx = services.WithTrigger(taskCtx, trigger)
	taskCtx = services.WithWorkoutID(taskCtx, workoutID)
	logger := logging.WithContext(taskCtx, d.logger)

	if d.dedup && d.processor.Store().Contains(workoutID) {
		ticket.Skipped = true
		logger.Info("workout already processed; delivery ignored",
			logging.String(logging.FieldEventType, "duplicate_delivery"),
		)
		return ticket, nil
	}

	err := d.tasks.Go(taskCtx, func(ctx context.Context) {
		// Failures are logged by the processor.
		_, _ = d.processor.ProcessWorkout(ctx, workoutID)
	})
	if err != nil {
		return ticket, err
	}
	logger.Debug("workout dispatched", logging.Int("in_flight", d.tasks.InFlight()))
	return ticket, nil
}
