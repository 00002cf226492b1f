package deload

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"overloader/internal/cycle"
	"overloader/internal/logging"
	"overloader/internal/services/hevy"
)

// Builder defaults used when no option overrides them.
const (
	// DefaultIntensity is the fraction of reference load prescribed for a deload week.
	DefaultIntensity = 0.60
	// DefaultPageSize is the number of workouts requested per history page.
	DefaultPageSize = 10
	// DefaultMaxPages bounds how many history pages one build may read.
	DefaultMaxPages = 10
)

// ReferenceKind records which search pass produced the reference workout.
type ReferenceKind string

const (
	ReferenceNone      ReferenceKind = ""
	ReferenceWeekOne   ReferenceKind = "week1_same_day"
	ReferenceWeekSeven ReferenceKind = "week7_same_routine"
)

// HistorySource pages through the athlete's workout history, newest first.
type HistorySource interface {
	ListWorkouts(ctx context.Context, page, pageSize int) (*hevy.WorkoutPage, error)
}

// Context is the cycle-transition guidance handed to the prompt builder.
type Context struct {
	CurrentWeek   int
	NextWeek      int
	Instruction   string
	Reference     *hevy.Workout
	ReferenceKind ReferenceKind
}

// IsDeload reports whether the next session opens a new block.
func (c Context) IsDeload() bool {
	return c.Instruction != ""
}

// ReferenceLabel is the heading used when the reference workout is rendered.
func (c Context) ReferenceLabel() string {
	switch c.ReferenceKind {
	case ReferenceWeekOne:
		return "WEEK 1 REFERENCE WORKOUT"
	case ReferenceWeekSeven:
		return "WEEK 7 REFERENCE WORKOUT (max effort baseline)"
	default:
		return ""
	}
}

// Builder assembles deload context, searching history for a baseline when a block ends.
type Builder struct {
	history   HistorySource
	intensity float64
	pageSize  int
	maxPages  int
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithIntensity sets the fraction of reference load prescribed for the deload week.
func WithIntensity(intensity float64) Option {
	return func(b *Builder) {
		if intensity > 0 && intensity <= 1 {
			b.intensity = intensity
		}
	}
}

// WithPaging bounds the history search.
func WithPaging(pageSize, maxPages int) Option {
	return func(b *Builder) {
		if pageSize > 0 {
			b.pageSize = pageSize
		}
		if maxPages > 0 {
			b.maxPages = maxPages
		}
	}
}

// WithLogger sets the builder's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder constructs a Builder reading history from source.
func NewBuilder(source HistorySource, opts ...Option) *Builder {
	b := &Builder{
		history:   source,
		intensity: DefaultIntensity,
		pageSize:  DefaultPageSize,
		maxPages:  DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "deload")
	return b
}

// Build returns the deload context for a workout in currentWeek. It never
// fails: history errors degrade to a reference-free instruction.
func (b *Builder) Build(ctx context.Context, currentWeek int, workout *hevy.Workout) Context {
	result := Context{CurrentWeek: currentWeek, NextWeek: cycle.NextWeek(currentWeek)}
	if !cycle.IsBlockEnd(currentWeek) || workout == nil {
		return result
	}

	logger := logging.WithContext(ctx, b.logger)
	reference, kind := b.findReference(ctx, workout, logger)
	result.Reference = reference
	result.ReferenceKind = kind
	result.Instruction = b.Instruction(reference != nil)

	if reference != nil {
		logger.Info("deload reference found",
			logging.String("reference_kind", string(kind)),
			logging.String("reference_workout_id", reference.ID),
			logging.String("reference_title", reference.Title),
		)
	} else {
		logger.Info("deload without reference", logging.String(logging.FieldEventType, "deload_no_reference"))
	}
	return result
}

// Instruction renders the cycle-transition text at the configured intensity.
func (b *Builder) Instruction(hasReference bool) string {
	percent := int(math.Round(b.intensity * 100))
	if hasReference {
		return fmt.Sprintf("CYCLE TRANSITION: You are transitioning from Week 8 (deload) to Week 1 of a NEW 8-week block. "+
			"This should be a DELOAD week with %d%% intensity and reduced volume based on the reference workout provided "+
			"(either Week 1 from previous cycle or Week 7 max effort as baseline). "+
			"Apply the deload percentage to the reference weights. Focus on form, recovery, and conservative loading.", percent)
	}
	return fmt.Sprintf("CYCLE TRANSITION: You are transitioning from Week 8 (deload) to Week 1 of a NEW 8-week block. "+
		"This should be a DELOAD week with %d%% intensity reduction from current weights and reduced volume. "+
		"Focus on form, recovery, and conservative loading to prepare for the new training cycle.", percent)
}

func (b *Builder) findReference(ctx context.Context, workout *hevy.Workout, logger *slog.Logger) (*hevy.Workout, ReferenceKind) {
	if b.history == nil {
		return nil, ReferenceNone
	}
	pages := &pageCursor{builder: b, logger: logger}

	if day, ok := cycle.DayOf(workout.Title); ok {
		match := pages.find(ctx, func(candidate *hevy.Workout) bool {
			week, hasWeek := cycle.WeekOf(candidate.Title)
			candidateDay, hasDay := cycle.DayOf(candidate.Title)
			return hasWeek && hasDay && week == 1 && candidateDay == day
		})
		if match != nil {
			return match, ReferenceWeekOne
		}
	}

	if workout.RoutineID == "" {
		return nil, ReferenceNone
	}
	match := pages.find(ctx, func(candidate *hevy.Workout) bool {
		week, ok := cycle.WeekOf(candidate.Title)
		return ok && week == 7 && candidate.RoutineID == workout.RoutineID
	})
	if match != nil {
		return match, ReferenceWeekSeven
	}
	return nil, ReferenceNone
}

// pageCursor fetches each history page at most once per build, so the second
// search pass reuses what the first one already read.
type pageCursor struct {
	builder *Builder
	logger  *slog.Logger

	pages     []*hevy.WorkoutPage
	fetched   int
	exhausted bool
}

func (p *pageCursor) page(ctx context.Context, index int) (*hevy.WorkoutPage, bool) {
	for p.fetched <= index && !p.exhausted && p.fetched < p.builder.maxPages {
		if ctx.Err() != nil {
			return nil, false
		}
		number := p.fetched + 1
		page, err := p.builder.history.ListWorkouts(ctx, number, p.builder.pageSize)
		p.fetched++
		if err != nil {
			logging.WarnWithContext(p.logger, "history page fetch failed", "history_page_failed",
				logging.Int("page", number),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "tracker history unavailable; deload falls back to current weights"),
			)
			p.pages = append(p.pages, nil)
			continue
		}
		p.pages = append(p.pages, page)
		if page.Exhausted(p.builder.pageSize) {
			p.exhausted = true
		}
	}
	if index >= len(p.pages) {
		return nil, false
	}
	return p.pages[index], true
}

func (p *pageCursor) find(ctx context.Context, match func(*hevy.Workout) bool) *hevy.Workout {
	for index := 0; ; index++ {
		page, ok := p.page(ctx, index)
		if !ok {
			return nil
		}
		if page == nil {
			continue
		}
		for i := range page.Workouts {
			if match(&page.Workouts[i]) {
				found := page.Workouts[i]
				return &found
			}
		}
	}
}
