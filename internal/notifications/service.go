package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"overloader/internal/config"
)

const userAgent = "Overloader-Go/0.1.0"

// Event identifies a pipeline milestone worth pushing to the athlete.
type Event string

const (
	EventRoutineUpdated   Event = "routine_updated"
	EventProcessingFailed Event = "processing_failed"
	EventSyncCompleted    Event = "sync_completed"
	EventTest             Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service publishes pipeline events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		routineUpdated: cfg.Notifications.RoutineUpdated,
		errors:         cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	routineUpdated bool
	errors         bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventRoutineUpdated:
		if !n.routineUpdated {
			return message{}, false
		}
		routine := payload.text("routineTitle")
		body := fmt.Sprintf("🏋️ Next session ready: %s", routine)
		if workout := payload.text("workoutTitle"); workout != "" {
			body = fmt.Sprintf("%s\nFrom: %s", body, workout)
		}
		if payload.flag("deload") {
			body += "\nDeload week: new block starts"
		}
		return message{
			title: "Overloader - Routine Updated",
			body:  body,
			tags:  []string{"overloader", "routine", "updated"},
		}, true
	case EventProcessingFailed:
		if !n.errors {
			return message{}, false
		}
		var b strings.Builder
		b.WriteString("❌ Error")
		if workout := payload.text("workoutID"); workout != "" {
			b.WriteString(" processing workout ")
			b.WriteString(workout)
		}
		b.WriteString(": ")
		if errText := payload.text("error"); errText != "" {
			b.WriteString(errText)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "Overloader - Error",
			body:     b.String(),
			tags:     []string{"overloader", "error", "alert"},
			priority: "high",
		}, true
	case EventSyncCompleted:
		failed := payload.number("failed")
		if !n.errors || failed == 0 {
			return message{}, false
		}
		return message{
			title: "Overloader - Sync Complete (with errors)",
			body:  fmt.Sprintf("Catch-up sync: %d updated, %d failed", payload.number("processed"), failed),
			tags:  []string{"overloader", "sync", "completed"},
		}, true
	case EventTest:
		return message{
			title:    "Overloader - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"overloader", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (p Payload) number(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func (p Payload) flag(key string) bool {
	v, _ := p[key].(bool)
	return v
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
