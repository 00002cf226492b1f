package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"overloader/internal/api"
	"overloader/internal/config"
	"overloader/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	tracker    *stubTracker
}

type stubTracker struct {
	mu   sync.Mutex
	puts int
}

func (s *stubTracker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("api-key") == "revoked" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/workouts":
		_, _ = io.WriteString(w, `{"page":1,"page_count":1,"workouts":[
			{"id":"w-1","title":"Day 2 - Week 8","routine_id":"R1","created_at":"2026-10-15T08:00:00Z"},
			{"id":"w-2","title":"Evening run","created_at":"2026-10-14T08:00:00Z"}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/workouts/w-1":
		_, _ = io.WriteString(w, `{"id":"w-1","title":"Day 2 - Week 8","routine_id":"R1","exercises":[
			{"index":0,"title":"Squat","exercise_template_id":"79D0BB3A","sets":[{"index":0,"type":"normal","weight_kg":100,"reps":5}]}]}`)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/routines/R1":
		_, _ = io.WriteString(w, `{"routine":{"id":"R1","title":"Day 2 - Week 8","exercises":[]}}`)
	case r.Method == http.MethodPut && r.URL.Path == "/v1/routines/R1":
		s.mu.Lock()
		s.puts++
		s.mu.Unlock()
		_, _ = io.WriteString(w, `{"routine":[{"id":"R1","title":"Day 2 - Week 1"}]}`)
	default:
		http.NotFound(w, r)
	}
}

func (s *stubTracker) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"HEVY_API_KEY", "HEVY_BASE_URL", "BASE_URL", "WEBHOOK_TOKEN", "PORT",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL", "OPENROUTER_API_KEY",
		"NTFY_TOPIC", "USE_MOCK_GEMINI",
	} {
		t.Setenv(key, "")
	}
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	isolateEnv(t)

	tracker := &stubTracker{}
	server := httptest.NewServer(tracker)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithHevyBaseURL(server.URL))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, tracker: tracker}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "LLM provider: mock")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigValidateCheck(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate", "--check"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate --check: %v\n%s", err, out)
	}
	requireContains(t, out, "[ok] Hevy API: Reachable")
	requireContains(t, out, "[ok] State directory")

	env.cfg.Hevy.APIKey = "revoked"
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err = runCLI(t, []string{"config", "validate", "--check"}, env.configPath)
	if err == nil {
		t.Fatal("expected a rejected api key to fail the check")
	}
	requireContains(t, out, "[FAIL] Hevy API: auth failed (invalid api key)")
}

func TestProcessDryRunPrintsPrescription(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"process", "w-1", "--dry-run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	var result api.ProcessResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if result.Outcome != "dry_run" || result.RoutineTitle != "Day 2 - Week 1" || !result.Deload {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Suggestions["79D0BB3A"] == "" {
		t.Fatalf("expected suggestions for the mock exercise, got %v", result.Suggestions)
	}
	if env.tracker.putCount() != 0 {
		t.Fatal("dry run must not write the routine")
	}
}

func TestProcessWritesRoutine(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"process", "w-1"}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "Outcome: updated")
	requireContains(t, out, "R1 -> Day 2 - Week 1")
	if env.tracker.putCount() != 1 {
		t.Fatalf("expected one routine write, got %d", env.tracker.putCount())
	}
}

func TestProcessRequiresWorkoutID(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"process"}, env.configPath); err == nil {
		t.Fatal("expected missing argument error")
	}
}

func TestHistoryTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Day 2 - Week 8")
	requireContains(t, out, "Day 2 - Week 1")
	requireContains(t, out, "Evening run")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var entries []api.HistoryEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 2 || entries[0].Week != 8 || entries[1].HasWeek {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestSyncJSONSummary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sync", "--dry-run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	var summary api.SyncSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Fetched != 2 || summary.RunID == "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if env.tracker.putCount() != 0 {
		t.Fatal("dry-run sync must not write routines")
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
