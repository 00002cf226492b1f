package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeHevy()
	c.normalizeServer()
	c.normalizeLLM()
	c.normalizeCycle()
	c.normalizeSync()
	c.normalizeProcessing()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

// lookupEnv returns the first non-empty value among keys.
func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHevy() {
	c.Hevy.APIKey = strings.TrimSpace(c.Hevy.APIKey)
	if c.Hevy.APIKey == "" {
		if value, ok := lookupEnv("HEVY_API_KEY"); ok {
			c.Hevy.APIKey = value
		}
	}
	c.Hevy.BaseURL = strings.TrimSpace(c.Hevy.BaseURL)
	if value, ok := lookupEnv("HEVY_BASE_URL", "BASE_URL"); ok && (c.Hevy.BaseURL == "" || c.Hevy.BaseURL == defaultHevyBaseURL) {
		c.Hevy.BaseURL = value
	}
	if c.Hevy.BaseURL == "" {
		c.Hevy.BaseURL = defaultHevyBaseURL
	}
	c.Hevy.BaseURL = strings.TrimRight(c.Hevy.BaseURL, "/")
	if c.Hevy.TimeoutSeconds <= 0 {
		c.Hevy.TimeoutSeconds = defaultHevyTimeoutSeconds
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Port = strings.TrimSpace(c.Server.Port)
	if value, ok := lookupEnv("PORT"); ok && (c.Server.Port == "" || c.Server.Port == defaultServerPort) {
		c.Server.Port = value
	}
	if c.Server.Port == "" {
		c.Server.Port = defaultServerPort
	}
	c.Server.WebhookToken = strings.TrimSpace(c.Server.WebhookToken)
	if c.Server.WebhookToken == "" {
		if value, ok := lookupEnv("WEBHOOK_TOKEN"); ok {
			c.Server.WebhookToken = value
		}
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	if value, ok := lookupEnv("USE_MOCK_GEMINI"); ok && strings.EqualFold(value, "true") {
		c.LLM.Provider = ProviderMock
	}

	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			if value, ok := lookupEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); ok {
				c.LLM.APIKey = value
			}
		}
		if value, ok := lookupEnv("GEMINI_MODEL"); ok && (c.LLM.Model == "" || c.LLM.Model == defaultGeminiModel) {
			c.LLM.Model = value
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultGeminiModel
		}
	case ProviderOpenRouter:
		if c.LLM.APIKey == "" {
			if value, ok := lookupEnv("OPENROUTER_API_KEY"); ok {
				c.LLM.APIKey = value
			}
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenRouterBaseURL
		}
		if c.LLM.Model == "" || c.LLM.Model == defaultGeminiModel {
			c.LLM.Model = defaultOpenRouterModel
		}
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeCycle() {
	if c.Cycle.DeloadIntensity == 0 {
		c.Cycle.DeloadIntensity = defaultDeloadIntensity
	}
	if c.Cycle.HistoryPageSize <= 0 {
		c.Cycle.HistoryPageSize = defaultHistoryPageSize
	}
	if c.Cycle.HistoryMaxPages <= 0 {
		c.Cycle.HistoryMaxPages = defaultHistoryMaxPages
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.IntervalMinutes <= 0 {
		c.Sync.IntervalMinutes = defaultSyncIntervalMinutes
	}
	if c.Sync.LookbackHours <= 0 {
		c.Sync.LookbackHours = defaultSyncLookbackHours
	}
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = defaultSyncPageSize
	}
}

func (c *Config) normalizeProcessing() {
	if c.Processing.MaxConcurrent <= 0 {
		c.Processing.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Processing.ShutdownTimeoutSec <= 0 {
		c.Processing.ShutdownTimeoutSec = defaultShutdownTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := lookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
