package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"overloader/internal/logging"
	"overloader/internal/notifications"
	"overloader/internal/overload"
	"overloader/internal/services"
	"overloader/internal/services/hevy"
)

// Tracker is the subset of the tracker API the processor needs.
type Tracker interface {
	GetWorkout(ctx context.Context, id string) (*hevy.Workout, error)
	GetRoutine(ctx context.Context, id string) (*hevy.Routine, error)
	UpdateRoutine(ctx context.Context, id string, update hevy.RoutineUpdate) (*hevy.Routine, error)
}

// Orchestrator turns a workout and its routine into a plan.
type Orchestrator interface {
	Process(ctx context.Context, workout *hevy.Workout, routine *hevy.Routine) (*overload.Plan, error)
}

// Outcome labels how a processing attempt ended successfully.
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeNoRoutine Outcome = "no_routine"
	OutcomeDryRun    Outcome = "dry_run"
)

// Result describes a completed processing attempt.
type Result struct {
	WorkoutID    string
	WorkoutTitle string
	RoutineID    string
	Outcome      Outcome
	Plan         *overload.Plan
	Update       hevy.RoutineUpdate
	Routine      *hevy.Routine
	Duration     time.Duration
}

// Processor runs the full pipeline for one workout id.
type Processor struct {
	tracker      Tracker
	orchestrator Orchestrator
	store        DedupStore
	notifier     notifications.Service
	logger       *slog.Logger
	dryRun       bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithNotifier sets the notification service.
func WithNotifier(notifier notifications.Service) ProcessorOption {
	return func(p *Processor) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithLogger sets the processor logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithDryRun skips the routine write and leaves the id unmarked.
func WithDryRun(enabled bool) ProcessorOption {
	return func(p *Processor) {
		p.dryRun = enabled
	}
}

// NewProcessor wires a Processor.
func NewProcessor(tracker Tracker, orchestrator Orchestrator, store DedupStore, opts ...ProcessorOption) *Processor {
	p := &Processor{
		tracker:      tracker,
		orchestrator: orchestrator,
		store:        store,
		notifier:     notifications.NewService(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = NewStore()
	}
	p.logger = logging.NewComponentLogger(p.logger, "intake")
	return p
}

// Store exposes the dedup store shared with the scheduler.
func (p *Processor) Store() DedupStore {
	return p.store
}

// DryRun reports whether write-back is disabled.
func (p *Processor) DryRun() bool {
	return p.dryRun
}

// ProcessWorkout fetches the workout and its routine, asks the orchestrator
// for the next prescription and writes it back. The id is marked processed
// after a successful write, after a failed write, and when the workout has no
// routine; any earlier failure leaves it eligible for the next sync.
func (p *Processor) ProcessWorkout(ctx context.Context, workoutID string) (*Result, error) {
	workoutID = strings.TrimSpace(workoutID)
	if workoutID == "" {
		return nil, services.Wrap(services.ErrValidation, "intake", "process", "workout id is required", nil)
	}
	ctx = services.WithWorkoutID(ctx, workoutID)
	started := time.Now()

	result, err := p.process(ctx, workoutID)
	if result != nil {
		result.Duration = time.Since(started)
	}
	if err != nil {
		p.reportFailure(ctx, workoutID, err)
		return result, err
	}
	return result, nil
}

func (p *Processor) process(ctx context.Context, workoutID string) (*Result, error) {
	logger := logging.WithContext(ctx, p.logger)

	workout, err := p.tracker.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstreamFetch, "intake", "fetch workout", workoutID, err)
	}
	result := &Result{WorkoutID: workoutID, WorkoutTitle: workout.Title}

	routineID := strings.TrimSpace(workout.RoutineID)
	if routineID == "" {
		if !p.dryRun {
			p.store.MarkProcessed(workoutID)
		}
		result.Outcome = OutcomeNoRoutine
		logger.Info("workout has no routine; nothing to update",
			logging.String("workout_title", workout.Title),
			logging.String(logging.FieldEventType, "workout_without_routine"),
		)
		return result, nil
	}
	result.RoutineID = routineID
	ctx = services.WithRoutineID(ctx, routineID)
	logger = logging.WithContext(ctx, p.logger)

	routine, err := p.tracker.GetRoutine(ctx, routineID)
	if err != nil {
		return result, services.Wrap(services.ErrUpstreamFetch, "intake", "fetch routine", routineID, err)
	}

	plan, err := p.orchestrator.Process(ctx, workout, routine)
	if err != nil {
		return result, err
	}
	result.Plan = plan
	result.Update = overload.BuildRoutineUpdate(plan)

	if p.dryRun {
		result.Outcome = OutcomeDryRun
		logger.Info("dry run; routine not written",
			logging.String("routine_title", plan.RoutineTitle),
			logging.Int("exercises", len(result.Update.Exercises)),
		)
		return result, nil
	}

	updated, writeErr := p.tracker.UpdateRoutine(ctx, routineID, result.Update)
	p.store.MarkProcessed(workoutID)
	if writeErr != nil {
		return result, services.Wrap(services.ErrWriteBack, "intake", "update routine", routineID, writeErr)
	}
	result.Routine = updated
	result.Outcome = OutcomeUpdated

	logger.Info("routine updated",
		logging.String("workout_title", workout.Title),
		logging.String("routine_title", plan.RoutineTitle),
		logging.Int("current_week", plan.CurrentWeek),
		logging.Int("next_week", plan.NextWeek),
		logging.Bool("deload", plan.Deload.IsDeload()),
		logging.String(logging.FieldEventType, "routine_updated"),
	)
	p.publish(ctx, notifications.EventRoutineUpdated, notifications.Payload{
		"routineTitle": plan.RoutineTitle,
		"workoutTitle": workout.Title,
		"deload":       plan.Deload.IsDeload(),
	})
	return result, nil
}

func (p *Processor) reportFailure(ctx context.Context, workoutID string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logger := logging.WithContext(ctx, p.logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
		logging.Bool("terminal", services.IsTerminal(err)),
	}
	if statusErr, ok := hevy.AsStatusError(err); ok {
		attrs = append(attrs, logging.Int("status_code", statusErr.StatusCode))
	}
	attrs = append(attrs, logging.ErrorChain(err)...)
	logging.ErrorWithContext(logger, "workout processing failed", services.EventType(err), attrs...)

	p.publish(ctx, notifications.EventProcessingFailed, notifications.Payload{
		"workoutID": workoutID,
		"error":     err,
	})
}

func (p *Processor) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if p.dryRun {
		return
	}
	if err := p.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "athlete was not notified"),
		)
	}
}
