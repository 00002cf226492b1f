package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"overloader/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"HEVY_API_KEY", "HEVY_BASE_URL", "BASE_URL", "WEBHOOK_TOKEN", "PORT",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL", "OPENROUTER_API_KEY",
		"NTFY_TOPIC", "USE_MOCK_GEMINI",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadFromEnvironmentOnly(t *testing.T) {
	home := isolateEnv(t)
	t.Setenv("HEVY_API_KEY", "hevy-key")
	t.Setenv("WEBHOOK_TOKEN", "secret")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("PORT", "8080")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Hevy.APIKey != "hevy-key" {
		t.Fatalf("expected hevy key from env, got %q", cfg.Hevy.APIKey)
	}
	if cfg.Hevy.BaseURL != "https://api.hevyapp.com" {
		t.Fatalf("unexpected hevy base url: %q", cfg.Hevy.BaseURL)
	}
	if cfg.Server.WebhookToken != "secret" {
		t.Fatalf("expected webhook token from env, got %q", cfg.Server.WebhookToken)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected port from env, got %q", cfg.Server.Port)
	}
	if cfg.LLM.Provider != config.ProviderGemini || cfg.LLM.Model != "gemini-2.5-pro" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Cycle.DeloadIntensity != 0.60 {
		t.Fatalf("unexpected deload intensity: %v", cfg.Cycle.DeloadIntensity)
	}
	if cfg.Sync.IntervalMinutes != 15 || cfg.Sync.LookbackHours != 24 || cfg.Sync.PageSize != 10 {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Processing.DedupWebhooks {
		t.Fatal("expected webhook dedup disabled by default")
	}
	wantState := filepath.Join(home, ".local", "state", "overloader")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LockPath() != filepath.Join(wantState, "overloader.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.ListenAddr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr())
	}
}

func TestLoadFileValuesWinOverEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HEVY_API_KEY", "env-key")
	t.Setenv("GEMINI_MODEL", "gemini-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[hevy]
api_key = "file-key"
base_url = "http://localhost:9999/"

[server]
port = "4000"
webhook_token = "file-token"

[llm]
provider = "gemini"
api_key = "g"
model = "gemini-file"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file %q to be used, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Hevy.APIKey != "file-key" {
		t.Fatalf("expected file api key, got %q", cfg.Hevy.APIKey)
	}
	if cfg.Hevy.BaseURL != "http://localhost:9999" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Hevy.BaseURL)
	}
	if cfg.LLM.Model != "gemini-file" {
		t.Fatalf("expected file model, got %q", cfg.LLM.Model)
	}
	if cfg.Server.Port != "4000" {
		t.Fatalf("expected file port, got %q", cfg.Server.Port)
	}
}

func TestLoadMockProviderNeedsNoLLMKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HEVY_API_KEY", "k")
	t.Setenv("WEBHOOK_TOKEN", "t")
	t.Setenv("USE_MOCK_GEMINI", "true")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Provider != config.ProviderMock {
		t.Fatalf("expected mock provider, got %q", cfg.LLM.Provider)
	}
}

func TestOpenRouterProviderDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HEVY_API_KEY", "k")
	t.Setenv("WEBHOOK_TOKEN", "t")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[llm]\nprovider = \"OpenRouter\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Provider != config.ProviderOpenRouter {
		t.Fatalf("expected provider to be normalized, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "or-key" {
		t.Fatalf("expected OPENROUTER_API_KEY fallback, got %q", cfg.LLM.APIKey)
	}
	if !strings.HasPrefix(cfg.LLM.BaseURL, "https://openrouter.ai/") {
		t.Fatalf("unexpected openrouter base url: %q", cfg.LLM.BaseURL)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"hevy key", func(c *config.Config) { c.Hevy.APIKey = "" }, "hevy.api_key"},
		{"webhook token", func(c *config.Config) { c.Server.WebhookToken = "" }, "server.webhook_token"},
		{"port", func(c *config.Config) { c.Server.Port = "http" }, "server.port"},
		{"provider", func(c *config.Config) { c.LLM.Provider = "claude" }, "llm.provider"},
		{"gemini key", func(c *config.Config) { c.LLM.Provider = config.ProviderGemini; c.LLM.APIKey = "" }, "llm.api_key"},
		{"intensity", func(c *config.Config) { c.Cycle.DeloadIntensity = 1.5 }, "cycle.deload_intensity"},
		{"page size", func(c *config.Config) { c.Sync.PageSize = 0 }, "sync.page_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Hevy.APIKey = "k"
			cfg.Server.WebhookToken = "t"
			cfg.LLM.APIKey = "g"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.Sync.IntervalMinutes != 15 || cfg.Cycle.HistoryMaxPages != 10 {
		t.Fatalf("sample config drifted from defaults: %+v %+v", cfg.Sync, cfg.Cycle)
	}
}
