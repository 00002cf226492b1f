package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"overloader/internal/intake"
	"overloader/internal/logging"
	"overloader/internal/notifications"
	"overloader/internal/services"
	"overloader/internal/services/hevy"
)

const (
	DefaultInterval = 15 * time.Minute
	DefaultLookback = 24 * time.Hour
	DefaultPageSize = 10
)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("sync run already in progress")

// Source lists recent workouts, newest first.
type Source interface {
	ListWorkouts(ctx context.Context, page, pageSize int) (*hevy.WorkoutPage, error)
}

// Processor runs the pipeline for one workout id.
type Processor interface {
	ProcessWorkout(ctx context.Context, workoutID string) (*intake.Result, error)
}

// Summary describes one reconciliation run.
type Summary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Recent     int       `json:"recent"`
	Skipped    int       `json:"skipped"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// Scheduler periodically catches up on workouts the webhook path missed.
type Scheduler struct {
	source     Source
	processor  Processor
	store      intake.DedupStore
	notifier   notifications.Service
	logger     *slog.Logger
	interval   time.Duration
	lookback   time.Duration
	pageSize   int
	runOnStart bool
	now        func() time.Time

	runMu sync.Mutex

	mu      sync.RWMutex
	last    *Summary
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the cadence between runs.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLookback sets how far back a workout's created_at may be.
func WithLookback(lookback time.Duration) Option {
	return func(s *Scheduler) {
		if lookback > 0 {
			s.lookback = lookback
		}
	}
}

// WithPageSize sets how many recent workouts each run fetches.
func WithPageSize(pageSize int) Option {
	return func(s *Scheduler) {
		if pageSize > 0 {
			s.pageSize = pageSize
		}
	}
}

// WithRunOnStart toggles the immediate run when the scheduler starts.
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) {
		s.runOnStart = enabled
	}
}

// WithClock overrides the time source used for the lookback cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier sets the notification service for run summaries.
func WithNotifier(notifier notifications.Service) Option {
	return func(s *Scheduler) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New constructs a Scheduler that skips ids present in store.
func New(source Source, processor Processor, store intake.DedupStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		source:     source,
		processor:  processor,
		store:      store,
		notifier:   notifications.NewService(nil),
		interval:   DefaultInterval,
		lookback:   DefaultLookback,
		pageSize:   DefaultPageSize,
		runOnStart: true,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = intake.NewStore()
	}
	s.logger = logging.NewComponentLogger(s.logger, "sync")
	return s
}

// Start launches the periodic loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(runCtx)
	s.logger.Info("sync scheduler started",
		logging.Duration("interval", s.interval),
		logging.Duration("lookback", s.lookback),
		logging.Bool("run_on_start", s.runOnStart),
	)
	return nil
}

// Stop cancels the loop and waits for an active run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// LastSummary returns the most recent completed run, if any.
func (s *Scheduler) LastSummary() (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Summary{}, false
	}
	return *s.last, true
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.runOnStart {
		s.runLogged(ctx)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Info("sync skipped; previous run still active")
			return
		}
		if ctx.Err() != nil {
			return
		}
		logging.ErrorWithContext(s.logger, "sync run failed", "sync_failed",
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			logging.Error(err),
		)
	}
}

// RunOnce performs a single reconciliation pass. Workouts are processed
// sequentially; individual failures are counted, not returned.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	if !s.runMu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	summary := Summary{RunID: uuid.NewString(), StartedAt: s.now()}
	ctx = services.WithRequestID(ctx, summary.RunID)
	ctx = services.WithTrigger(ctx, services.TriggerSync)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("sync started")

	err := s.run(ctx, logger, &summary)
	summary.FinishedAt = s.now()
	if err != nil {
		summary.Error = err.Error()
	}
	s.mu.Lock()
	recorded := summary
	s.last = &recorded
	s.mu.Unlock()
	if err != nil {
		return summary, err
	}

	logger.Info("sync completed",
		logging.Int("fetched", summary.Fetched),
		logging.Int("recent", summary.Recent),
		logging.Int("skipped", summary.Skipped),
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	if err := s.notifier.Publish(ctx, notifications.EventSyncCompleted, notifications.Payload{
		"processed": summary.Processed,
		"failed":    summary.Failed,
	}); err != nil {
		logging.WarnWithContext(logger, "sync notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "athlete was not notified"),
		)
	}
	return summary, nil
}

func (s *Scheduler) run(ctx context.Context, logger *slog.Logger, summary *Summary) error {
	page, err := s.source.ListWorkouts(ctx, 1, s.pageSize)
	if err != nil {
		return services.Wrap(services.ErrUpstreamFetch, "sync", "list workouts", "page 1", err)
	}
	summary.Fetched = len(page.Workouts)

	recent := RecentWorkouts(page.Workouts, summary.StartedAt.Add(-s.lookback))
	summary.Recent = len(recent)

	for _, workout := range recent {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.store.Contains(workout.ID) {
			summary.Skipped++
			logger.Debug("workout already processed", logging.String(logging.FieldWorkoutID, workout.ID))
			continue
		}
		if _, err := s.processor.ProcessWorkout(ctx, workout.ID); err != nil {
			summary.Failed++
			continue
		}
		summary.Processed++
	}
	return nil
}

// RecentWorkouts keeps workouts created strictly after cutoff. Entries whose
// created_at does not parse as RFC 3339 are dropped.
func RecentWorkouts(workouts []hevy.Workout, cutoff time.Time) []hevy.Workout {
	out := make([]hevy.Workout, 0, len(workouts))
	for _, workout := range workouts {
		created, err := time.Parse(time.RFC3339, workout.CreatedAt)
		if err != nil {
			continue
		}
		if created.After(cutoff) {
			out = append(out, workout)
		}
	}
	return out
}
