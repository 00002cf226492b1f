package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"overloader/internal/cycle"
	"overloader/internal/deload"
	"overloader/internal/services/hevy"
)

const coachRole = "You are a professional strength and conditioning coach specializing in block periodization for an 8-week strength-focused training cycle."

const trainingContext = `- Client is a hybrid athlete (strength + cardio)
- Focuses on main compound movements: Bench Press, Squat, Overhead Press, Romanian Deadlift, Pendlay Row
- Prefers low-moderate volume (2-4 sets per exercise)
- Uses 3-day split: Day 1 (Upper), Day 2 (Lower), Day 3 (Full Body)
- Prioritizes strength gains over hypertrophy`

const loadingConstraints = `- If there is a set with 1 rep with weight of 1, then it was a to failure set on an arbitrary weight. Keep the weight at 1.
- The smallest weight plate for barbell exercises available is 2.5kg (5kg if both sides)
- Don't add a warmup, if there was a warmup from the workout leave it as is`

const periodization = `Week 1-2: Foundation (7 reps @ 75%, 2-3 sets)
Week 3-4: Intensity increase (6 reps @ 80%, 3-4 sets)
Week 5-6: Heavy work (5 reps @ 85%, 3-4 sets)
Week 7: Testing (3-5RM attempts @ 90%+)
Week 8: Deload (5 reps @ 60%, 2-3 sets)`

const progressionRules = `1. Start conservatively with 2 sets, build to 3-4 sets max
2. Prioritize intensity over volume
3. Use same exercises throughout block
4. Progress: reps → weight → sets → testing
5. Accessories stay minimal (2 sets, RPE 6-7)
6. You MUST use the SAME exercises from the current workout
7. Keep exercise notes CONCISE - only include RPE targets, no explanatory text
8. For any field that has no meaningful value, ALWAYS use null, never "N/A" or empty strings
9. Do NOT include an "rpe" field in any set; put RPE targets in the exercise notes instead`

const promptTemplate = `{{.Role}}

CURRENT WORKOUT DATA:
{{.Workout}}

{{.Routine}}
{{- if .Reference}}

{{.ReferenceLabel}}:
{{.Reference}}
{{- end}}

TRAINING CONTEXT:
{{.TrainingContext}}
- Currently in week {{.CurrentWeek}} of {{.CycleWeeks}}-week block
{{.LoadingConstraints}}
{{- if .Instruction}}

{{.Instruction}}
{{- end}}

PERIODIZATION STRATEGY:
{{.Periodization}}

PROGRESSION RULES:
{{.ProgressionRules}}

OUTPUT FORMAT:
Return ONLY a JSON object with this exact structure:
{
    "updated_exercises": [
        {
            "index": 0,
            "title": "Exercise Name",
            "notes": "RPE 8",
            "exercise_template_id": "original_id",
            "superset_id": null,
            "sets": [
                {
                    "index": 0,
                    "type": "normal",
                    "weight_kg": 85.0,
                    "reps": 7,
                    "distance_meters": null,
                    "duration_seconds": null,
                    "custom_metric": null
                }
            ]
        }
    ],
    "week_number": {{.NextWeek}},
    "routine_title": {{json .RoutineTitle}}
}

CURRENT WEEK: {{.CurrentWeek}}
NEXT WEEK TARGET: {{.NextWeek}}`

var prompt = template.Must(template.New("overload").Funcs(template.FuncMap{
	"json": func(value string) (string, error) {
		encoded, err := json.Marshal(value)
		return string(encoded), err
	},
}).Parse(promptTemplate))

// Request is everything the prompt is rendered from.
type Request struct {
	Workout      *hevy.Workout
	Routine      *hevy.Routine
	Deload       deload.Context
	RoutineTitle string
}

type promptData struct {
	Role               string
	Workout            string
	Routine            string
	Reference          string
	ReferenceLabel     string
	TrainingContext    string
	LoadingConstraints string
	Instruction        string
	Periodization      string
	ProgressionRules   string
	CurrentWeek        int
	NextWeek           int
	CycleWeeks         int
	RoutineTitle       string
}

// BuildPrompt renders the coaching prompt for one completed workout.
func BuildPrompt(req Request) (string, error) {
	if req.Workout == nil {
		return "", errors.New("build prompt: workout is required")
	}
	if req.Routine == nil {
		return "", errors.New("build prompt: routine is required")
	}
	data := promptData{
		Role:               coachRole,
		Workout:            strings.TrimRight(FormatWorkout(req.Workout), "\n"),
		Routine:            strings.TrimRight(FormatRoutine(req.Routine), "\n"),
		TrainingContext:    trainingContext,
		LoadingConstraints: loadingConstraints,
		Instruction:        req.Deload.Instruction,
		Periodization:      periodization,
		ProgressionRules:   progressionRules,
		CurrentWeek:        req.Deload.CurrentWeek,
		NextWeek:           req.Deload.NextWeek,
		CycleWeeks:         cycle.Weeks,
		RoutineTitle:       req.RoutineTitle,
	}
	if req.Deload.Reference != nil {
		data.Reference = strings.TrimRight(FormatWorkout(req.Deload.Reference), "\n")
		data.ReferenceLabel = req.Deload.ReferenceLabel()
	}

	var b strings.Builder
	if err := prompt.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}
