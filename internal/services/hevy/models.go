package hevy

import "strings"

// Set types recognised by the tracker.
const (
	SetWarmup  = "warmup"
	SetNormal  = "normal"
	SetFailure = "failure"
	SetDropset = "dropset"
)

// NormalizeSetType trims and lowercases a set type.
func NormalizeSetType(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ValidSetType reports whether value is one of the tracker's set types,
// ignoring case and surrounding space.
func ValidSetType(value string) bool {
	switch NormalizeSetType(value) {
	case SetWarmup, SetNormal, SetFailure, SetDropset:
		return true
	default:
		return false
	}
}

// IsWarmup reports whether the set type is a warmup (case-insensitive).
func IsWarmup(setType string) bool {
	return NormalizeSetType(setType) == SetWarmup
}

// Set is a single logged or prescribed set. Rpe is read-only on the tracker side.
type Set struct {
	Index           int      `json:"index"`
	Type            string   `json:"type"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DistanceMeters  *int     `json:"distance_meters"`
	DurationSeconds *int     `json:"duration_seconds"`
	RPE             *float64 `json:"rpe,omitempty"`
	CustomMetric    *float64 `json:"custom_metric"`
}

// Exercise is one exercise entry in a workout or routine.
type Exercise struct {
	Index              int     `json:"index"`
	Title              string  `json:"title"`
	Notes              *string `json:"notes"`
	ExerciseTemplateID string  `json:"exercise_template_id"`
	SupersetID         *int    `json:"superset_id"`
	RestSeconds        *int    `json:"rest_seconds"`
	Sets               []Set   `json:"sets"`
}

// Workout is an immutable completed-session snapshot.
type Workout struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	RoutineID   string     `json:"routine_id"`
	Description string     `json:"description"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	UpdatedAt   string     `json:"updated_at"`
	CreatedAt   string     `json:"created_at"`
	Exercises   []Exercise `json:"exercises"`
}

// Routine is the mutable template that gets rewritten after each session.
type Routine struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	FolderID  *int       `json:"folder_id"`
	UpdatedAt string     `json:"updated_at"`
	CreatedAt string     `json:"created_at"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPage is one page of the workout history listing.
type WorkoutPage struct {
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	PageCount  int       `json:"page_count"`
	TotalCount int       `json:"total_count"`
	Workouts   []Workout `json:"workouts"`
}

// Exhausted reports whether no page after this one can hold more workouts.
// The tracker reports either total_count or page_count; when neither is set a
// short page marks the end.
func (p *WorkoutPage) Exhausted(pageSize int) bool {
	if p == nil {
		return true
	}
	switch {
	case p.TotalCount > 0:
		return p.Page*pageSize >= p.TotalCount
	case p.PageCount > 0:
		return p.Page >= p.PageCount
	default:
		return len(p.Workouts) < pageSize
	}
}

// SetUpdate is the write-side set shape. It has no rpe field.
type SetUpdate struct {
	Type            string   `json:"type"`
	WeightKg        *float64 `json:"weight_kg"`
	Reps            *int     `json:"reps"`
	DistanceMeters  *int     `json:"distance_meters"`
	DurationSeconds *int     `json:"duration_seconds"`
	CustomMetric    *float64 `json:"custom_metric"`
}

// ExerciseUpdate is the write-side exercise shape.
type ExerciseUpdate struct {
	ExerciseTemplateID string      `json:"exercise_template_id"`
	SupersetID         *int        `json:"superset_id"`
	RestSeconds        *int        `json:"rest_seconds"`
	Notes              *string     `json:"notes,omitempty"`
	Sets               []SetUpdate `json:"sets"`
}

// RoutineUpdate is the body of PUT /v1/routines/{id}.
type RoutineUpdate struct {
	Title     *string          `json:"title,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	FolderID  *int             `json:"folder_id,omitempty"`
	Exercises []ExerciseUpdate `json:"exercises,omitempty"`
}

// ToUpdate converts a read-side set to its write-side form, dropping rpe.
func (s Set) ToUpdate() SetUpdate {
	return SetUpdate{
		Type:            s.Type,
		WeightKg:        s.WeightKg,
		Reps:            s.Reps,
		DistanceMeters:  s.DistanceMeters,
		DurationSeconds: s.DurationSeconds,
		CustomMetric:    s.CustomMetric,
	}
}

// ToUpdate converts a read-side exercise to its write-side form. Notes are
// left unset; callers attach them explicitly.
func (e Exercise) ToUpdate() ExerciseUpdate {
	sets := make([]SetUpdate, 0, len(e.Sets))
	for _, set := range e.Sets {
		sets = append(sets, set.ToUpdate())
	}
	return ExerciseUpdate{
		ExerciseTemplateID: e.ExerciseTemplateID,
		SupersetID:         e.SupersetID,
		RestSeconds:        e.RestSeconds,
		Sets:               sets,
	}
}
