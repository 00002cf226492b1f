package overload

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"overloader/internal/protocol"
	"overloader/internal/services/hevy"
)

var fold = cases.Fold()

// BuildSuggestions renders a short note per exercise template id summarising
// the prescribed working sets. Exercises without working sets get no entry.
func BuildSuggestions(response *protocol.Response) map[string]string {
	suggestions := make(map[string]string)
	if response == nil {
		return suggestions
	}
	for _, exercise := range response.UpdatedExercises {
		working := workingSets(exercise.Sets)
		if len(working) == 0 {
			continue
		}
		lines := make([]string, 0, len(working)+2)
		lines = append(lines, fmt.Sprintf("%d sets", len(working)))
		if exercise.Notes != nil {
			if rpe, ok := ExtractRPE(*exercise.Notes); ok {
				lines = append(lines, "RPE "+rpe)
			}
		}
		for _, set := range working {
			lines = append(lines, formatSet(set))
		}
		suggestions[exercise.ExerciseTemplateID] = strings.Join(lines, "\n")
	}
	return suggestions
}

func workingSets(sets []hevy.Set) []hevy.Set {
	out := make([]hevy.Set, 0, len(sets))
	for _, set := range sets {
		if !hevy.IsWarmup(set.Type) {
			out = append(out, set)
		}
	}
	return out
}

func formatSet(set hevy.Set) string {
	reps := "?"
	if set.Reps != nil {
		reps = strconv.Itoa(*set.Reps)
	}
	if set.WeightKg == nil {
		return reps + " reps"
	}
	return protocol.FormatLoad(*set.WeightKg) + "x" + reps
}

// ExtractRPE finds the RPE target in free-form notes: the first token made of
// digits and hyphens within two words after "rpe" (case-insensitive).
func ExtractRPE(notes string) (string, bool) {
	folded := fold.String(notes)
	start := strings.Index(folded, "rpe")
	if start < 0 {
		return "", false
	}
	words := strings.Fields(folded[start+len("rpe"):])
	if len(words) > 2 {
		words = words[:2]
	}
	for _, word := range words {
		if isRPEToken(word) {
			return word, true
		}
	}
	return "", false
}

func isRPEToken(word string) bool {
	hasDigit := false
	for _, r := range word {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '-':
		default:
			return false
		}
	}
	return hasDigit
}
