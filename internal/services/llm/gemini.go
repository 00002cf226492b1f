package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-pro"

// Gemini generates text with Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

var _ Generator = (*Gemini)(nil)

// GeminiOption customizes the Gemini generator.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiHTTPClient overrides the HTTP client used by the SDK.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(cc *genai.ClientConfig) {
		if client != nil {
			cc.HTTPClient = client
		}
	}
}

// NewGemini creates a Gemini generator. BaseURL is optional and only used to
// point the SDK at a proxy or test server.
func NewGemini(ctx context.Context, cfg Config, opts ...GeminiOption) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.timeout()},
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	for _, opt := range opts {
		opt(clientConfig)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	generateConfig := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		generateConfig.Temperature = genai.Ptr(float32(cfg.Temperature))
	}
	return &Gemini{client: client, model: model, config: generateConfig}, nil
}

// Name identifies the provider and model in logs.
func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

// Generate sends prompt as a single user turn and returns the concatenated reply text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini generate: prompt required")
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := ""
		if len(resp.Candidates) > 0 {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("gemini generate: empty response (finish_reason=%q)", reason)
	}
	return text, nil
}
