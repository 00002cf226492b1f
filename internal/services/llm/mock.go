package llm

import (
	"context"
	"sync"
)

// MockReply is the canned response returned by the mock provider.
const MockReply = `{
    "updated_exercises": [{
        "index": 0,
        "title": "Bench Press (Barbell)",
        "notes": "RPE 8",
        "exercise_template_id": "79D0BB3A",
        "superset_id": null,
        "rest_seconds": null,
        "sets": [{
            "index": 0,
            "type": "normal",
            "weight_kg": 75.0,
            "reps": 5,
            "distance_meters": null,
            "duration_seconds": null,
            "custom_metric": null
        }]
    }],
    "week_number": 2,
    "routine_title": "Week 2 - Day 1"
}`

// Mock returns a fixed reply and records the prompts it was given.
type Mock struct {
	reply string

	mu      sync.Mutex
	prompts []string
}

var _ Generator = (*Mock)(nil)

// NewMock creates a mock generator. An empty reply selects MockReply.
func NewMock(reply string) *Mock {
	if reply == "" {
		reply = MockReply
	}
	return &Mock{reply: reply}
}

// Name identifies the provider in logs.
func (m *Mock) Name() string { return "mock" }

// Generate records prompt and returns the canned reply.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.reply, nil
}

// Prompts returns a copy of every prompt received so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
