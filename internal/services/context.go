package services

import "context"

type contextKey string

const (
	workoutIDKey contextKey = "workout_id"
	routineIDKey contextKey = "routine_id"
	triggerKey   contextKey = "trigger"
	requestIDKey contextKey = "request_id"
)

// Intake triggers recorded on processing contexts.
const (
	TriggerWebhook = "webhook"
	TriggerSync    = "sync"
	TriggerCLI     = "cli"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithWorkoutID annotates context with the tracker workout identifier.
func WithWorkoutID(ctx context.Context, id string) context.Context {
	return withString(ctx, workoutIDKey, id)
}

// WorkoutIDFromContext extracts the workout identifier if present.
func WorkoutIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, workoutIDKey)
}

// WithRoutineID annotates context with the routine being rewritten.
func WithRoutineID(ctx context.Context, id string) context.Context {
	return withString(ctx, routineIDKey, id)
}

// RoutineIDFromContext extracts the routine identifier if present.
func RoutineIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, routineIDKey)
}

// WithTrigger annotates context with the intake path (webhook, sync, cli).
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return withString(ctx, triggerKey, trigger)
}

// TriggerFromContext returns the intake path if present.
func TriggerFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, triggerKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}
