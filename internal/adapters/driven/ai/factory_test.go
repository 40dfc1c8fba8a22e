package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

func keysFrom(m map[domain.AIProvider]string) KeyFunc {
	return func(p domain.AIProvider) string { return m[p] }
}

func TestFactory_Default(t *testing.T) {
	f := NewFactory(domain.LLMSettings{Provider: domain.AIProviderDeepSeek}, nil)
	assert.Equal(t, domain.AIProviderDeepSeek, f.Default())
}

func TestFactory_Create_Presets(t *testing.T) {
	f := NewFactory(domain.LLMSettings{Provider: domain.AIProviderOpenRouter}, keysFrom(map[domain.AIProvider]string{
		domain.AIProviderOpenRouter: "or",
		domain.AIProviderDeepSeek:   "ds",
		domain.AIProviderOpenAI:     "oa",
		domain.AIProviderAnthropic:  "an",
	}))

	tests := []struct {
		provider  domain.AIProvider
		wantName  string
		wantModel string
	}{
		{domain.AIProviderOpenRouter, "openrouter", "openai/gpt-4.1-mini"},
		{domain.AIProviderDeepSeek, "deepseek", "deepseek-chat"},
		{domain.AIProviderOpenAI, "openai", "gpt-4o-mini"},
		{domain.AIProviderAnthropic, "anthropic", "claude-3-5-sonnet-latest"},
		{domain.AIProviderOllama, "ollama", "llama3.2"},
		{"  DeepSeek ", "deepseek", "deepseek-chat"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			gen, err := f.Create(tt.provider, "")

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, gen.Name())
			assert.Equal(t, tt.wantModel, gen.ModelName())
			assert.NoError(t, gen.Close())
		})
	}
}

func TestFactory_Create_ModelPrecedence(t *testing.T) {
	f := NewFactory(domain.LLMSettings{
		Provider: domain.AIProviderOpenRouter,
		Model:    "anthropic/claude-3.5-haiku",
		APIKey:   "k",
	}, nil)

	gen, err := f.Create(domain.AIProviderOpenRouter, "")
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3.5-haiku", gen.ModelName())

	gen, err = f.Create(domain.AIProviderOpenRouter, "openai/gpt-4.1-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4.1-mini", gen.ModelName())

	gen, err = f.Create(domain.AIProviderOllama, "")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", gen.ModelName())
}

func TestFactory_Create_UnknownProvider(t *testing.T) {
	f := NewFactory(domain.LLMSettings{Provider: domain.AIProviderOpenRouter}, nil)

	_, err := f.Create("gemini", "")

	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestFactory_Create_MissingKey(t *testing.T) {
	f := NewFactory(domain.LLMSettings{Provider: domain.AIProviderOpenRouter}, nil)

	_, err := f.Create(domain.AIProviderDeepSeek, "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnknownProvider)
	assert.Contains(t, err.Error(), "DEEPSEEK_API_KEY")
}

func TestFactory_DefaultKeysOnlyServeConfiguredProvider(t *testing.T) {
	f := NewFactory(domain.LLMSettings{Provider: domain.AIProviderDeepSeek, APIKey: "ds"}, nil)

	_, err := f.Create(domain.AIProviderDeepSeek, "")
	require.NoError(t, err)

	_, err = f.Create(domain.AIProviderOpenAI, "")
	assert.Error(t, err)
}

func TestChatOptions(t *testing.T) {
	opts := ChatOptions(domain.LLMSettings{Temperature: 0.2, MaxTokens: 512})

	assert.Equal(t, 512, opts.MaxTokens)
	assert.InDelta(t, 0.2, opts.Temperature, 1e-9)
}
