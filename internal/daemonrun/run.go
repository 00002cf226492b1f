package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"overloader/internal/config"
	"overloader/internal/daemon"
	"overloader/internal/logging"
	"overloader/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	DryRun      bool
}

// Run starts the overloader daemon and blocks until SIGINT/SIGTERM or ctx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := NewLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "overloader.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	pipeline, err := Build(signalCtx, cfg, logger, BuildOptions{DryRun: opts.DryRun})
	if err != nil {
		logging.ErrorWithContext(logger, "pipeline setup failed", "daemon_setup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `overloader config validate` and check api keys"),
		)
		return err
	}
	logConfigSnapshot(logger, cfg, pipeline.GeneratorName(), opts.DryRun)
	logPreflight(signalCtx, logger, cfg, pipeline.Tracker)

	d, err := daemon.New(cfg, logger, daemon.Deps{
		Processor: pipeline.Processor,
		Tasks:     pipeline.Tasks,
		Scheduler: pipeline.Scheduler,
		Notifier:  pipeline.Notifier,
		Generator: pipeline.GeneratorName(),
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("overloader daemon shutting down")
	d.Stop()
	return nil
}

// NewLogger builds the daemon logger writing to stdout and the log directory.
func NewLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	outputs := []string{"stdout"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "overloader.log"))
	}
	return logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Development: opts.Development,
	})
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config, generator string, dryRun bool) {
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("listen", cfg.ListenAddr()),
		logging.String("hevy_base_url", cfg.Hevy.BaseURL),
		logging.String("generator", generator),
		logging.Bool("llm_key_present", strings.TrimSpace(cfg.LLM.APIKey) != ""),
		logging.Duration("sync_interval", cfg.SyncInterval()),
		logging.Duration("sync_lookback", cfg.SyncLookback()),
		logging.Int("max_concurrent", cfg.Processing.MaxConcurrent),
		logging.Bool("webhook_dedup", cfg.Processing.DedupWebhooks),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Bool("dry_run", dryRun),
	)
}

// logPreflight reports readiness checks without blocking startup; a tracker
// outage at boot is retried by the next sync pass.
func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config, source preflight.Source) {
	for _, result := range preflight.RunAll(ctx, cfg, source) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "processing may fail until resolved"),
			logging.String(logging.FieldErrorHint, "run `overloader config validate --check`"),
		)
	}
}
