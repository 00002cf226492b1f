package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHevy(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateCycle(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"sync.interval_minutes":               c.Sync.IntervalMinutes,
		"sync.lookback_hours":                 c.Sync.LookbackHours,
		"sync.page_size":                      c.Sync.PageSize,
		"processing.max_concurrent":           c.Processing.MaxConcurrent,
		"processing.shutdown_timeout_seconds": c.Processing.ShutdownTimeoutSec,
		"notifications.request_timeout":       c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		path = defaultConfigPath
	}
	return fmt.Sprintf("edit %s (create with 'overloader config init')", path)
}

func (c *Config) validateHevy() error {
	if c.Hevy.APIKey == "" {
		return fmt.Errorf("hevy.api_key is required. Set HEVY_API_KEY env var or %s", configHint())
	}
	if !strings.HasPrefix(c.Hevy.BaseURL, "http://") && !strings.HasPrefix(c.Hevy.BaseURL, "https://") {
		return fmt.Errorf("hevy.base_url must be an http(s) URL, got %q", c.Hevy.BaseURL)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.WebhookToken == "" {
		return fmt.Errorf("server.webhook_token is required. Set WEBHOOK_TOKEN env var or %s", configHint())
	}
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %q", c.Server.Port)
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key must be set for the gemini provider (or set GEMINI_API_KEY)")
		}
	case ProviderOpenRouter:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key must be set for the openrouter provider (or set OPENROUTER_API_KEY)")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (want gemini, openrouter or mock)", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateCycle() error {
	if c.Cycle.DeloadIntensity <= 0 || c.Cycle.DeloadIntensity > 1 {
		return errors.New("cycle.deload_intensity must be in (0, 1]")
	}
	return ensurePositiveMap(map[string]int{
		"cycle.history_page_size": c.Cycle.HistoryPageSize,
		"cycle.history_max_pages": c.Cycle.HistoryMaxPages,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
