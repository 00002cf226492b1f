package api

import (
	"context"
	"fmt"

	"overloader/internal/intake"
	"overloader/internal/reconcile"
)

// ListHistory reads up to pages pages of workout history, newest first, and
// annotates each workout with its cycle position.
func ListHistory(ctx context.Context, source reconcile.Source, pages, pageSize int, processed intake.DedupStore) ([]HistoryEntry, error) {
	if source == nil {
		return nil, fmt.Errorf("history source is required")
	}
	if pages <= 0 {
		pages = 1
	}
	if pageSize <= 0 {
		pageSize = reconcile.DefaultPageSize
	}
	var entries []HistoryEntry
	for page := 1; page <= pages; page++ {
		result, err := source.ListWorkouts(ctx, page, pageSize)
		if err != nil {
			return entries, fmt.Errorf("list workouts page %d: %w", page, err)
		}
		for _, workout := range result.Workouts {
			entries = append(entries, FromWorkout(workout, processed))
		}
		if result.Exhausted(pageSize) {
			break
		}
	}
	return entries, nil
}
