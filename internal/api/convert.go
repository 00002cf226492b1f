package api

import (
	"time"

	"overloader/internal/cycle"
	"overloader/internal/intake"
	"overloader/internal/overload"
	"overloader/internal/reconcile"
	"overloader/internal/services/hevy"
)

// FromSummary converts a reconciliation summary to its API representation.
func FromSummary(summary reconcile.Summary) SyncSummary {
	return SyncSummary{
		RunID:      summary.RunID,
		StartedAt:  FormatTime(summary.StartedAt),
		FinishedAt: FormatTime(summary.FinishedAt),
		DurationMs: durationMs(summary.FinishedAt.Sub(summary.StartedAt)),
		Fetched:    summary.Fetched,
		Recent:     summary.Recent,
		Skipped:    summary.Skipped,
		Processed:  summary.Processed,
		Failed:     summary.Failed,
		Error:      summary.Error,
	}
}

// FromResult converts a processing result to its API representation.
func FromResult(result *intake.Result) ProcessResult {
	if result == nil {
		return ProcessResult{}
	}
	dto := ProcessResult{
		WorkoutID:    result.WorkoutID,
		WorkoutTitle: result.WorkoutTitle,
		RoutineID:    result.RoutineID,
		Outcome:      string(result.Outcome),
		DurationMs:   durationMs(result.Duration),
	}
	if plan := result.Plan; plan != nil {
		dto.RoutineTitle = plan.RoutineTitle
		dto.CurrentWeek = plan.CurrentWeek
		dto.NextWeek = plan.NextWeek
		dto.Deload = plan.Deload.IsDeload()
		if plan.Deload.Reference != nil {
			dto.Reference = plan.Deload.ReferenceLabel() + ": " + plan.Deload.Reference.Title
		}
		dto.Suggestions = overload.BuildSuggestions(plan.Response)
	}
	return dto
}

// FromWorkout converts a history workout, flagging ids present in processed.
func FromWorkout(workout hevy.Workout, processed intake.DedupStore) HistoryEntry {
	week, hasWeek := cycle.WeekOf(workout.Title)
	day, hasDay := cycle.DayOf(workout.Title)
	coord := cycle.Parse(workout.Title)
	if !hasWeek {
		week = coord.Week
	}
	if !hasDay {
		day = coord.Day
	}
	entry := HistoryEntry{
		ID:        workout.ID,
		Title:     workout.Title,
		RoutineID: workout.RoutineID,
		Week:      week,
		Day:       day,
		HasWeek:   hasWeek,
		HasDay:    hasDay,
		NextTitle: cycle.NextRoutineTitle(workout.Title),
		CreatedAt: workout.CreatedAt,
	}
	if processed != nil {
		entry.Processed = processed.Contains(workout.ID)
	}
	return entry
}

// FormatTime renders t in the API timestamp layout; the zero time is empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func durationMs(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
