package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"overloader/internal/services"
	"overloader/internal/services/hevy"
)

// DefaultRoutineTitle is used when the reply carries no usable routine_title.
const DefaultRoutineTitle = "Updated Routine"

const jsonFence = "```json"

// Response is the validated model reply.
type Response struct {
	UpdatedExercises []hevy.Exercise `json:"updated_exercises"`
	WeekNumber       int             `json:"week_number"`
	RoutineTitle     string          `json:"routine_title"`
}

// ExtractJSON returns the interior of the first ```json fence, or the trimmed
// reply when there is none. An unterminated fence yields everything after it.
func ExtractJSON(raw string) string {
	start := strings.Index(raw, jsonFence)
	if start < 0 {
		return strings.TrimSpace(raw)
	}
	rest := raw[start+len(jsonFence):]
	if end := strings.Index(rest, "```"); end >= 0 {
		return strings.TrimSpace(rest[:end])
	}
	return strings.TrimSpace(rest)
}

// ParseResponse decodes and validates a model reply. Only a missing or
// invalid exercise list is fatal; week_number and routine_title fall back to
// defaults.
func ParseResponse(raw string) (*Response, error) {
	payload := ExtractJSON(raw)
	if payload == "" {
		return nil, malformed("empty response", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, malformed("failed to parse JSON response", err)
	}

	rawExercises, ok := fields["updated_exercises"]
	if !ok || isNull(rawExercises) {
		return nil, malformed("missing 'updated_exercises' field in JSON response", nil)
	}
	var exercises []hevy.Exercise
	if err := json.Unmarshal(rawExercises, &exercises); err != nil {
		return nil, malformed("failed to parse exercises array", err)
	}
	if err := validateExercises(exercises); err != nil {
		return nil, malformed("invalid exercises array", err)
	}

	return &Response{
		UpdatedExercises: exercises,
		WeekNumber:       weekNumber(fields["week_number"]),
		RoutineTitle:     routineTitle(fields["routine_title"]),
	}, nil
}

func validateExercises(exercises []hevy.Exercise) error {
	for i, exercise := range exercises {
		if strings.TrimSpace(exercise.ExerciseTemplateID) == "" {
			return fmt.Errorf("exercise %d: exercise_template_id is required", i)
		}
		for j := range exercise.Sets {
			set := &exercises[i].Sets[j]
			if !hevy.ValidSetType(set.Type) {
				return fmt.Errorf("exercise %d (%s) set %d: unsupported type %q", i, exercise.ExerciseTemplateID, j, set.Type)
			}
			set.Type = hevy.NormalizeSetType(set.Type)
		}
	}
	return nil
}

func weekNumber(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return 1
	}
	number, ok := decoded.(json.Number)
	if !ok {
		return 1
	}
	value, err := number.Int64()
	if err != nil || value < 0 {
		return 1
	}
	return int(value)
}

func routineTitle(raw json.RawMessage) string {
	var title string
	if len(raw) == 0 || json.Unmarshal(raw, &title) != nil {
		return DefaultRoutineTitle
	}
	if strings.TrimSpace(title) == "" {
		return DefaultRoutineTitle
	}
	return title
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func malformed(message string, err error) error {
	return services.Wrap(services.ErrMalformedResponse, "protocol", "parse response", message, err)
}
