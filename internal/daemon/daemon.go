package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"overloader/internal/api"
	"overloader/internal/config"
	"overloader/internal/intake"
	"overloader/internal/logging"
	"overloader/internal/notifications"
	"overloader/internal/reconcile"
)

// Deps are the pipeline components the daemon hosts.
type Deps struct {
	Processor *intake.Processor
	Tasks     *intake.TaskSet
	Scheduler *reconcile.Scheduler
	Notifier  notifications.Service
	// Generator names the configured LLM provider for status output.
	Generator string
}

// Daemon owns the webhook listener, the background task set and the
// reconciliation loop, and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	processor *intake.Processor
	tasks     *intake.TaskSet
	scheduler *reconcile.Scheduler
	notifier  notifications.Service
	generator string

	lockPath string
	lock     *flock.Flock

	mu         sync.Mutex
	dispatcher *intake.Dispatcher
	api        *apiServer
	startedAt  time.Time
	stopping   bool
	running    atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*Daemon, error) {
	if cfg == nil || deps.Processor == nil || deps.Tasks == nil || deps.Scheduler == nil {
		return nil, errors.New("daemon requires config, processor, task set, and scheduler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		processor: deps.Processor,
		tasks:     deps.Tasks,
		scheduler: deps.Scheduler,
		notifier:  notifier,
		generator: deps.Generator,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, opens the listener and launches the
// reconciliation loop.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another overloader daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.dispatcher = intake.NewDispatcher(d.ctx, d.processor, d.tasks,
		intake.WithWebhookDedup(d.cfg.Processing.DedupWebhooks),
		intake.WithDispatchLogger(d.logger),
	)

	server := newAPIServer(d.cfg, d, d.logger)
	if err := server.start(); err != nil {
		d.abortStart()
		return err
	}
	d.api = server

	if err := d.scheduler.Start(d.ctx); err != nil {
		server.stop(context.Background())
		d.api = nil
		d.abortStart()
		return fmt.Errorf("start sync scheduler: %w", err)
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("overloader daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", server.addr()),
		logging.String("generator", d.generator),
		logging.Bool("dry_run", d.processor.DryRun()),
	)
	return nil
}

func (d *Daemon) abortStart() {
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx, d.cancel = nil, nil
	d.dispatcher = nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
}

// Stop closes the listener, stops the scheduler and drains in-flight tasks
// before releasing the lock. The listener and the task drain each get the
// shutdown timeout; tasks still running after it are cancelled. d.mu is not
// held while waiting so in-flight handlers can still reach Submit and Status.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running.Load() || d.stopping {
		d.mu.Unlock()
		return
	}
	d.stopping = true
	server := d.api
	d.mu.Unlock()

	timeout := time.Duration(d.cfg.Processing.ShutdownTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if server != nil {
		apiCtx, cancelAPI := context.WithTimeout(context.Background(), timeout)
		server.stop(apiCtx)
		cancelAPI()
	}
	d.scheduler.Stop()
	d.tasks.Close()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), timeout)
	if err := d.tasks.Wait(drainCtx); err != nil {
		logging.WarnWithContext(d.logger, "in-flight tasks did not finish before shutdown", "shutdown_timeout",
			logging.Int("in_flight", d.tasks.InFlight()),
			logging.Duration("timeout", timeout),
			logging.String(logging.FieldImpact, "interrupted workouts are retried by the next sync"),
		)
	}
	cancelDrain()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.api = nil
	d.dispatcher = nil
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx, d.cancel = nil, nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.stopping = false
	d.logger.Info("overloader daemon stopped")
}

// Running reports whether Start has succeeded and Stop has not been called.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the listener address, or "" when not serving.
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.api.addr()
}

// Submit hands a workout id to the background task set.
func (d *Daemon) Submit(ctx context.Context, workoutID, trigger string) (intake.Ticket, error) {
	d.mu.Lock()
	dispatcher := d.dispatcher
	d.mu.Unlock()
	if dispatcher == nil {
		return intake.Ticket{}, intake.ErrTaskSetClosed
	}
	return dispatcher.Submit(ctx, workoutID, trigger)
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) api.DaemonStatus {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()

	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Generator:    d.generator,
		DryRun:       d.processor.DryRun(),
		WebhookDedup: d.cfg.Processing.DedupWebhooks,
		Tasks: api.TaskStatus{
			InFlight: d.tasks.InFlight(),
			Started:  d.tasks.Started(),
		},
	}
	if status.Running {
		status.StartedAt = api.FormatTime(startedAt)
	}
	if store := d.processor.Store(); store != nil {
		status.ProcessedCount = store.Len()
	}
	if summary, ok := d.scheduler.LastSummary(); ok {
		dto := api.FromSummary(summary)
		status.LastSync = &dto
	}
	return status
}

// TestNotification sends a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
