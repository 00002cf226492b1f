package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"overloader/internal/config"
	"overloader/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "routine updated",
			event: notifications.EventRoutineUpdated,
			payload: notifications.Payload{
				"routineTitle": "Day 1 - Week 3",
				"workoutTitle": "Day 1 - Week 2",
			},
			expectTitle:   "Overloader - Routine Updated",
			expectMessage: "🏋️ Next session ready: Day 1 - Week 3\nFrom: Day 1 - Week 2",
			expectTags:    "overloader,routine,updated",
		},
		{
			name:  "routine updated at block end",
			event: notifications.EventRoutineUpdated,
			payload: notifications.Payload{
				"routineTitle": "Week 1",
				"deload":       true,
			},
			expectTitle:   "Overloader - Routine Updated",
			expectMessage: "🏋️ Next session ready: Week 1\nDeload week: new block starts",
			expectTags:    "overloader,routine,updated",
		},
		{
			name:  "processing failed",
			event: notifications.EventProcessingFailed,
			payload: notifications.Payload{
				"workoutID": "w-1",
				"error":     errors.New("routine write-back failed"),
			},
			expectTitle:    "Overloader - Error",
			expectMessage:  "❌ Error processing workout w-1: routine write-back failed",
			expectTags:     "overloader,error,alert",
			expectPriority: "high",
		},
		{
			name:          "sync with failures",
			event:         notifications.EventSyncCompleted,
			payload:       notifications.Payload{"processed": 2, "failed": 1},
			expectTitle:   "Overloader - Sync Complete (with errors)",
			expectMessage: "Catch-up sync: 2 updated, 1 failed",
			expectTags:    "overloader,sync,completed",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Overloader - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "overloader,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RoutineUpdated = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	suppressed := []struct {
		event   notifications.Event
		payload notifications.Payload
	}{
		{notifications.EventRoutineUpdated, notifications.Payload{"routineTitle": "Week 2"}},
		{notifications.EventProcessingFailed, notifications.Payload{"error": "boom"}},
		{notifications.EventSyncCompleted, notifications.Payload{"processed": 1, "failed": 3}},
		{notifications.Event("unknown"), nil},
	}
	for _, tc := range suppressed {
		if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", tc.event, err)
		}
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic closed", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected ntfy status error, got %v", err)
	}
}
