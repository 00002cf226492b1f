package overload

import (
	"context"
	"log/slog"
	"time"

	"overloader/internal/cycle"
	"overloader/internal/deload"
	"overloader/internal/logging"
	"overloader/internal/protocol"
	"overloader/internal/services"
	"overloader/internal/services/hevy"
	"overloader/internal/services/llm"
)

// ContextBuilder produces the cycle-transition context for a workout.
type ContextBuilder interface {
	Build(ctx context.Context, currentWeek int, workout *hevy.Workout) deload.Context
}

// Plan is the outcome of one orchestration: the validated model reply plus the
// deterministic cycle bookkeeping derived from the workout title.
type Plan struct {
	Response     *protocol.Response
	RoutineTitle string
	CurrentWeek  int
	NextWeek     int
	Deload       deload.Context
	Generator    string
}

// Service runs workout → prompt → model → validated reply.
type Service struct {
	generator llm.Generator
	builder   ContextBuilder
	logger    *slog.Logger
}

// NewService wires the orchestrator.
func NewService(generator llm.Generator, builder ContextBuilder, logger *slog.Logger) *Service {
	return &Service{
		generator: generator,
		builder:   builder,
		logger:    logging.NewComponentLogger(logger, "overload"),
	}
}

// Process derives the next routine prescription for a completed workout.
// Generation failures are tagged ErrGeneration and never retried here.
func (s *Service) Process(ctx context.Context, workout *hevy.Workout, routine *hevy.Routine) (*Plan, error) {
	if s == nil || s.generator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "overload", "process", "generator not configured", nil)
	}
	if workout == nil || routine == nil {
		return nil, services.Wrap(services.ErrValidation, "overload", "process", "workout and routine are required", nil)
	}
	logger := logging.WithContext(ctx, s.logger)

	currentWeek := cycle.Parse(workout.Title).Week
	nextTitle := cycle.NextRoutineTitle(workout.Title)

	var deloadCtx deload.Context
	if s.builder != nil {
		deloadCtx = s.builder.Build(ctx, currentWeek, workout)
	} else {
		deloadCtx = deload.Context{CurrentWeek: currentWeek, NextWeek: cycle.NextWeek(currentWeek)}
	}

	prompt, err := protocol.BuildPrompt(protocol.Request{
		Workout:      workout,
		Routine:      routine,
		Deload:       deloadCtx,
		RoutineTitle: nextTitle,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "overload", "build prompt", "render failed", err)
	}
	generatorName := llm.NameOf(s.generator)
	logger.Debug("prompt rendered",
		logging.String("generator", generatorName),
		logging.Int("prompt_bytes", len(prompt)),
		logging.Bool("deload", deloadCtx.IsDeload()),
	)

	started := time.Now()
	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, services.Wrap(services.ErrGeneration, "overload", "generate", generatorName, err)
	}
	logger.Debug("model replied",
		logging.Duration("latency", time.Since(started)),
		logging.Int("reply_bytes", len(reply)),
	)

	response, err := protocol.ParseResponse(reply)
	if err != nil {
		logging.ErrorWithContext(logger, "model reply rejected", services.EventType(err),
			logging.Alert("model_output_drift"),
			logging.String("generator", generatorName),
			logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			logging.Error(err),
		)
		return nil, err
	}

	if response.RoutineTitle != nextTitle {
		logger.Debug("model routine title ignored",
			logging.String("model_title", response.RoutineTitle),
			logging.String("routine_title", nextTitle),
		)
	}

	return &Plan{
		Response:     response,
		RoutineTitle: nextTitle,
		CurrentWeek:  currentWeek,
		NextWeek:     deloadCtx.NextWeek,
		Deload:       deloadCtx,
		Generator:    generatorName,
	}, nil
}
