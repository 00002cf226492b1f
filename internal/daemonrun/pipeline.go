package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"overloader/internal/config"
	"overloader/internal/deload"
	"overloader/internal/intake"
	"overloader/internal/logging"
	"overloader/internal/notifications"
	"overloader/internal/overload"
	"overloader/internal/reconcile"
	"overloader/internal/services/hevy"
	"overloader/internal/services/llm"
)

// Pipeline is the fully wired set of components shared by the daemon and the
// one-shot CLI commands.
type Pipeline struct {
	Config    *config.Config
	Logger    *slog.Logger
	Tracker   hevy.Tracker
	Generator llm.Generator
	Notifier  notifications.Service
	Store     *intake.Store
	Processor *intake.Processor
	Tasks     *intake.TaskSet
	Scheduler *reconcile.Scheduler
}

// BuildOptions tweaks pipeline construction.
type BuildOptions struct {
	DryRun bool
	// Tracker replaces the HTTP tracker client, mainly for tests.
	Tracker hevy.Tracker
	// Generator replaces the configured LLM provider.
	Generator llm.Generator
}

// Build wires tracker, model, deload search, orchestrator, intake and
// reconciliation from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	tracker := opts.Tracker
	if tracker == nil {
		client, err := hevy.New(cfg.Hevy.APIKey, cfg.Hevy.BaseURL,
			hevy.WithTimeout(time.Duration(cfg.Hevy.TimeoutSeconds)*time.Second))
		if err != nil {
			return nil, fmt.Errorf("create hevy client: %w", err)
		}
		tracker = client
	}

	generator := opts.Generator
	if generator == nil {
		built, err := llm.NewFromConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create llm generator: %w", err)
		}
		generator = built
	}

	notifier := notifications.NewService(cfg)
	store := intake.NewStore()

	builder := deload.NewBuilder(tracker,
		deload.WithIntensity(cfg.Cycle.DeloadIntensity),
		deload.WithPaging(cfg.Cycle.HistoryPageSize, cfg.Cycle.HistoryMaxPages),
		deload.WithLogger(logger),
	)
	service := overload.NewService(generator, builder, logger)
	processor := intake.NewProcessor(tracker, service, store,
		intake.WithNotifier(notifier),
		intake.WithLogger(logger),
		intake.WithDryRun(opts.DryRun),
	)
	scheduler := reconcile.New(tracker, processor, store,
		reconcile.WithInterval(cfg.SyncInterval()),
		reconcile.WithLookback(cfg.SyncLookback()),
		reconcile.WithPageSize(cfg.Sync.PageSize),
		reconcile.WithRunOnStart(cfg.Sync.RunOnStart),
		reconcile.WithNotifier(notifier),
		reconcile.WithLogger(logger),
	)

	return &Pipeline{
		Config:    cfg,
		Logger:    logger,
		Tracker:   tracker,
		Generator: generator,
		Notifier:  notifier,
		Store:     store,
		Processor: processor,
		Tasks:     intake.NewTaskSet(cfg.Processing.MaxConcurrent, logger),
		Scheduler: scheduler,
	}, nil
}

// GeneratorName labels the configured model for logs and status output.
func (p *Pipeline) GeneratorName() string {
	return llm.NameOf(p.Generator)
}
