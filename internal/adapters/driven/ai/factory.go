// Package ai builds generation adapters from settings.
package ai

import (
	"fmt"
	"strings"

	anthropicllm "github.com/custodia-labs/normativa/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/normativa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/normativa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure Factory implements the interface.
var _ driven.GeneratorFactory = (*Factory)(nil)

// Preset is the endpoint and default model of a provider.
type Preset struct {
	BaseURL string
	Model   string
}

// Presets holds the built-in endpoint of every provider.
var Presets = map[domain.AIProvider]Preset{
	domain.AIProviderOpenRouter: {BaseURL: "https://openrouter.ai/api/v1", Model: "openai/gpt-4.1-mini"},
	domain.AIProviderDeepSeek:   {BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"},
	domain.AIProviderOpenAI:     {BaseURL: openaillm.DefaultBaseURL, Model: openaillm.DefaultModel},
	domain.AIProviderAnthropic:  {BaseURL: anthropicllm.DefaultBaseURL, Model: anthropicllm.DefaultModel},
	domain.AIProviderOllama:     {BaseURL: ollamallm.DefaultBaseURL, Model: ollamallm.DefaultModel},
}

// openRouterHeaders attribute requests to the application on OpenRouter.
var openRouterHeaders = map[string]string{
	"HTTP-Referer": "https://github.com/custodia-labs/normativa",
	"X-Title":      "normativa",
}

// KeyFunc returns the API key of a provider, or "" when none is configured.
type KeyFunc func(provider domain.AIProvider) string

// Factory creates generators on demand.
// The configured model and base URL only apply to the configured provider.
type Factory struct {
	settings domain.LLMSettings
	keys     KeyFunc
}

// NewFactory creates a generator factory.
func NewFactory(settings domain.LLMSettings, keys KeyFunc) *Factory {
	if keys == nil {
		keys = func(p domain.AIProvider) string {
			if p == settings.Provider {
				return settings.APIKey
			}
			return ""
		}
	}
	return &Factory{settings: settings, keys: keys}
}

// Default returns the configured provider.
func (f *Factory) Default() domain.AIProvider {
	return f.settings.Provider
}

// Create builds a generator for provider. A non-empty model overrides
// the configured and preset models. A missing API key is an error here,
// before any request is sent.
func (f *Factory) Create(provider domain.AIProvider, model string) (driven.Generator, error) {
	provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(string(provider))))
	preset, ok := Presets[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, provider)
	}

	baseURL := preset.BaseURL
	if provider == f.settings.Provider {
		if f.settings.BaseURL != "" {
			baseURL = f.settings.BaseURL
		}
		if model == "" {
			model = f.settings.Model
		}
	}
	if model == "" {
		model = preset.Model
	}

	key := f.keys(provider)
	if provider.RequiresAPIKey() && key == "" {
		return nil, fmt.Errorf("%s: API key is required, set %s", provider, provider.APIKeyEnv())
	}

	logger.Debug("Creating %s generator (model=%s, base=%s)", provider, model, baseURL)

	switch provider {
	case domain.AIProviderOllama:
		return ollamallm.New(ollamallm.Config{BaseURL: baseURL, Model: model}), nil

	case domain.AIProviderAnthropic:
		return anthropicllm.New(anthropicllm.Config{APIKey: key, BaseURL: baseURL, Model: model})

	default:
		cfg := openaillm.Config{
			Name:    provider.String(),
			APIKey:  key,
			BaseURL: baseURL,
			Model:   model,
		}
		if provider == domain.AIProviderOpenRouter {
			cfg.Headers = openRouterHeaders
		}
		return openaillm.New(cfg)
	}
}

// ChatOptions derives per-call options from settings.
func ChatOptions(settings domain.LLMSettings) driven.ChatOptions {
	return driven.ChatOptions{
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}
}
