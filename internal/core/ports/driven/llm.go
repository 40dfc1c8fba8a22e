// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// Generator executes a message sequence against a language model.
// The core treats it as an opaque function from messages to a reply.
//
// Implementations may include:
//   - OpenAI-compatible APIs (OpenRouter, DeepSeek, OpenAI)
//   - Anthropic (Claude)
//   - Ollama (local models)
type Generator interface {
	// Name returns the provider name reported to callers.
	Name() string

	// ModelName returns the name of the model being used.
	ModelName() string

	// Chat sends the messages and returns the reply text.
	Chat(ctx context.Context, messages []domain.Message, opts ChatOptions) (string, error)

	// Close releases resources.
	Close() error
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// GeneratorFactory builds generators on demand.
type GeneratorFactory interface {
	// Create returns a generator for the provider, with an optional model override.
	// Returns domain.ErrUnknownProvider for unregistered providers.
	Create(provider domain.AIProvider, model string) (Generator, error)

	// Default returns the configured default provider.
	Default() domain.AIProvider
}
