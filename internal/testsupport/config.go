package testsupport

import (
	"path/filepath"
	"testing"

	"overloader/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a valid config seeded with unique temp directories per
// test. It selects the mock model provider and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Hevy.APIKey = "test-hevy-key"
	cfgVal.Hevy.BaseURL = "http://127.0.0.1:0"
	cfgVal.Server.Bind = "127.0.0.1"
	cfgVal.Server.Port = "0"
	cfgVal.Server.WebhookToken = "test-token"
	cfgVal.LLM.Provider = config.ProviderMock
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHevyBaseURL points the tracker client at a test server.
func WithHevyBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hevy.BaseURL = url
	}
}

// WithWebhookToken sets the bearer token expected on /webhook.
func WithWebhookToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.WebhookToken = token
	}
}

// WithNtfyTopic enables notifications against a test endpoint.
func WithNtfyTopic(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = url
	}
}

// WithWebhookDedup toggles dedup on the webhook path.
func WithWebhookDedup(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.DedupWebhooks = enabled
	}
}

// WithSyncOnStart toggles the immediate reconciliation run.
func WithSyncOnStart(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.RunOnStart = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
