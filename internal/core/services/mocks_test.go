package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// --- Shared test doubles ---

// mockCatalog implements driven.CatalogLoader.
type mockCatalog struct {
	records []domain.SourceRecord
	err     error
}

func (m *mockCatalog) Load(_ context.Context) ([]domain.SourceRecord, error) {
	return m.records, m.err
}

func (m *mockCatalog) Path() string { return "data/sources.csv" }

// mockBackend implements driven.TextBackend with canned pages.
type mockBackend struct {
	name   string
	result *driven.BackendResult
	err    error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Pages(_ context.Context, _ string) (*driven.BackendResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockGenerator implements driven.Generator and records what it was sent.
type mockGenerator struct {
	mu       sync.Mutex
	name     string
	model    string
	reply    string
	replyFn  func(messages []domain.Message) string
	err      error
	calls    int
	messages []domain.Message
	opts     driven.ChatOptions
}

func (m *mockGenerator) Name() string      { return m.name }
func (m *mockGenerator) ModelName() string { return m.model }
func (m *mockGenerator) Close() error      { return nil }

func (m *mockGenerator) Chat(_ context.Context, messages []domain.Message, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	if m.replyFn != nil {
		return m.replyFn(messages), nil
	}
	return m.reply, nil
}

// mockFactory implements driven.GeneratorFactory.
type mockFactory struct {
	def        domain.AIProvider
	generators map[domain.AIProvider]*mockGenerator
	createErr  error
	lastModel  string
}

func (f *mockFactory) Create(provider domain.AIProvider, model string) (driven.Generator, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	gen, ok := f.generators[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}
	f.lastModel = model
	return gen, nil
}

func (f *mockFactory) Default() domain.AIProvider { return f.def }

// mockPromptStore implements driven.PromptStore with fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptRAGSystem:    "Asistente {institution}. Responde solo con el contexto o di 'No encontrado en normativa {institution}'.",
		driven.PromptRAGUser:      "Pregunta:\n{question}\n\nContexto:\n{context}",
		driven.PromptDirectSystem: "Eres un asistente {institution}, responde breve.",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// readableText returns text long enough to survive the readability filter.
func readableText(words ...string) string {
	return strings.Join(words, " ") + " " + strings.Repeat("contenido normativo ", 3)
}
