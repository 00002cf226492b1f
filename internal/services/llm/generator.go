package llm

import (
	"context"
	"fmt"

	"overloader/internal/config"
)

// Generator turns a prompt into the model's raw reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by generators that can identify their provider and model.
type Named interface {
	Name() string
}

// NameOf returns a log-friendly provider label for g.
func NameOf(g Generator) string {
	if named, ok := g.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", g)
}

// NewFromConfig builds the generator selected by llm.provider.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm: config required")
	}
	settings := Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		Temperature:    cfg.LLM.Temperature,
	}
	switch cfg.LLM.Provider {
	case config.ProviderGemini, "":
		return NewGemini(ctx, settings)
	case config.ProviderOpenRouter:
		return NewOpenRouter(settings), nil
	case config.ProviderMock:
		return NewMock(""), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.LLM.Provider)
	}
}
