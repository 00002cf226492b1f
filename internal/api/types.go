package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// WebhookRequest is the tracker's workout-completed delivery.
type WebhookRequest struct {
	Payload WebhookPayload `json:"payload"`
}

// WebhookPayload identifies the completed workout.
type WebhookPayload struct {
	WorkoutID string `json:"workoutId"`
}

// AcceptedResponse acknowledges a webhook delivery.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// TaskStatus summarizes background processing.
type TaskStatus struct {
	InFlight int   `json:"inFlight"`
	Started  int64 `json:"started"`
}

// SyncSummary is the transport form of a reconciliation run.
type SyncSummary struct {
	RunID      string `json:"runId"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`
	DurationMs int64  `json:"durationMs"`
	Fetched    int    `json:"fetched"`
	Recent     int    `json:"recent"`
	Skipped    int    `json:"skipped"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool         `json:"running"`
	PID            int          `json:"pid"`
	StartedAt      string       `json:"startedAt,omitempty"`
	LockFilePath   string       `json:"lockFilePath"`
	Generator      string       `json:"generator"`
	DryRun         bool         `json:"dryRun"`
	WebhookDedup   bool         `json:"webhookDedup"`
	ProcessedCount int          `json:"processedCount"`
	Tasks          TaskStatus   `json:"tasks"`
	LastSync       *SyncSummary `json:"lastSync,omitempty"`
}

// HistoryEntry is one workout in the history listing.
type HistoryEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	RoutineID string `json:"routineId,omitempty"`
	Week      int    `json:"week"`
	Day       int    `json:"day"`
	HasWeek   bool   `json:"hasWeek"`
	HasDay    bool   `json:"hasDay"`
	NextTitle string `json:"nextTitle"`
	CreatedAt string `json:"createdAt,omitempty"`
	Processed bool   `json:"processed"`
}

// ProcessResult is the transport form of a single pipeline run.
type ProcessResult struct {
	WorkoutID    string            `json:"workoutId"`
	WorkoutTitle string            `json:"workoutTitle"`
	RoutineID    string            `json:"routineId,omitempty"`
	Outcome      string            `json:"outcome"`
	RoutineTitle string            `json:"routineTitle,omitempty"`
	CurrentWeek  int               `json:"currentWeek,omitempty"`
	NextWeek     int               `json:"nextWeek,omitempty"`
	Deload       bool              `json:"deload"`
	Reference    string            `json:"reference,omitempty"`
	Suggestions  map[string]string `json:"suggestions,omitempty"`
	DurationMs   int64             `json:"durationMs"`
}
