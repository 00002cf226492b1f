package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"overloader/internal/services/hevy"
)

// FormatWorkout renders a completed workout as plain text for the prompt.
func FormatWorkout(workout *hevy.Workout) string {
	if workout == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Workout Title: %s\n", workout.Title)
	fmt.Fprintf(&b, "Start Time: %s\n", workout.StartTime)
	fmt.Fprintf(&b, "End Time: %s\n", workout.EndTime)
	b.WriteString("\nExercises:\n")
	writeExercises(&b, workout.Exercises)
	return b.String()
}

// FormatRoutine renders a routine template in the same layout as a workout.
func FormatRoutine(routine *hevy.Routine) string {
	if routine == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ROUTINE TEMPLATE:\nRoutine: %s\n\nExercises:\n", routine.Title)
	writeExercises(&b, routine.Exercises)
	return b.String()
}

func writeExercises(b *strings.Builder, exercises []hevy.Exercise) {
	for _, exercise := range exercises {
		fmt.Fprintf(b, "- %s (%s)\n", exercise.Title, exercise.ExerciseTemplateID)
		for _, set := range exercise.Sets {
			fmt.Fprintf(b, "  * Set %d: %s x %s (%s)\n", set.Index+1, formatWeight(set.WeightKg), formatReps(set.Reps), set.Type)
		}
		b.WriteByte('\n')
	}
}

func formatWeight(weight *float64) string {
	if weight == nil {
		return "BW"
	}
	return strconv.FormatFloat(*weight, 'f', -1, 64) + "kg"
}

func formatReps(reps *int) string {
	if reps == nil {
		return "N/A"
	}
	return strconv.Itoa(*reps)
}

// FormatLoad prints whole loads without decimals and fractional loads with one.
// It is for suggestion notes; prompt text keeps logged weights at full precision.
func FormatLoad(value float64) string {
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}
