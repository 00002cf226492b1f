package overload

import "overloader/internal/services/hevy"

// BuildRoutineUpdate converts a plan into the routine write-back payload. The
// title is the computed next title; notes are attached only where a
// suggestion exists for the exercise template.
func BuildRoutineUpdate(plan *Plan) hevy.RoutineUpdate {
	if plan == nil || plan.Response == nil {
		return hevy.RoutineUpdate{}
	}
	title := plan.RoutineTitle
	suggestions := BuildSuggestions(plan.Response)

	exercises := make([]hevy.ExerciseUpdate, 0, len(plan.Response.UpdatedExercises))
	for _, exercise := range plan.Response.UpdatedExercises {
		update := exercise.ToUpdate()
		if note, ok := suggestions[exercise.ExerciseTemplateID]; ok {
			update.Notes = &note
		}
		exercises = append(exercises, update)
	}
	return hevy.RoutineUpdate{
		Title:     &title,
		Exercises: exercises,
	}
}
