// Package openai provides a Generator for OpenAI-compatible chat completion APIs.
// OpenRouter, DeepSeek and OpenAI itself share this wire format.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for an OpenAI-compatible generator.
type Config struct {
	// Name is the provider name reported to callers (default: openai).
	Name string

	// APIKey is the bearer token (required).
	APIKey string

	// BaseURL is the API base URL, without the /chat/completions suffix.
	BaseURL string

	// Model is the model identifier.
	Model string

	// Headers are extra request headers, e.g. OpenRouter attribution.
	Headers map[string]string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Generator talks to a /chat/completions endpoint.
type Generator struct {
	client  *http.Client
	name    string
	baseURL string
	apiKey  string
	model   string
	headers map[string]string
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates a new OpenAI-compatible generator.
func New(cfg Config) (*Generator, error) {
	if cfg.Name == "" {
		cfg.Name = string(domain.AIProviderOpenAI)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Name)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		headers: cfg.Headers,
	}, nil
}

// Name returns the provider name.
func (g *Generator) Name() string {
	return g.name
}

// ModelName returns the model identifier.
func (g *Generator) ModelName() string {
	return g.model
}

// Chat sends the messages and returns the first choice.
func (g *Generator) Chat(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	reqBody := chatCompletionRequest{
		Model:       g.model,
		Messages:    chatMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%s error (status %d): %s", g.name, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%s error: %s", g.name, chatResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s error (status %d): %s", g.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", g.name)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
