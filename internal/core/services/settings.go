package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCatalog     = "paths.catalog"
	keyRawDir      = "paths.raw_dir"
	keyChunkTable  = "paths.chunk_table"
	keyPromptsDir  = "paths.prompts_dir"
	keyChunkSize   = "ingest.chunk_size"
	keyOverlap     = "ingest.overlap"
	keyMinChars    = "ingest.min_chars"
	keyWorkers     = "ingest.workers"
	keyRawGlob     = "ingest.raw_glob"
	keyPDFToText   = "ingest.pdftotext"
	keyTopK        = "retrieval.k"
	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"
	keyTemperature = "llm.temperature"
	keyMaxTokens   = "llm.max_tokens"
	keyServerAddr  = "server.addr"
	keyEvalRate    = "eval.rate_per_second"
	keyInstitution = "assistant.institution"
)

// maxTemperature bounds llm.temperature.
const maxTemperature = 2.0

// SettingsService manages application settings.
// Values come from the config store with defaults for every missing key.
// API keys found in the environment take precedence over the store.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Paths: domain.PathSettings{
			Catalog:    s.getString(keyCatalog, d.Paths.Catalog),
			RawDir:     s.getString(keyRawDir, d.Paths.RawDir),
			ChunkTable: s.getString(keyChunkTable, d.Paths.ChunkTable),
			PromptsDir: s.getString(keyPromptsDir, d.Paths.PromptsDir),
		},
		Ingest: domain.IngestSettings{
			ChunkSize: s.getInt(keyChunkSize, d.Ingest.ChunkSize),
			Overlap:   s.getInt(keyOverlap, d.Ingest.Overlap),
			MinChars:  s.getInt(keyMinChars, d.Ingest.MinChars),
			Workers:   s.getInt(keyWorkers, d.Ingest.Workers),
			RawGlob:   s.getString(keyRawGlob, d.Ingest.RawGlob),
			PDFToText: s.getString(keyPDFToText, d.Ingest.PDFToText),
		},
		Retrieval: domain.RetrievalSettings{
			K: s.getInt(keyTopK, d.Retrieval.K),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.configStore.GetString(keyLLMModel), // Empty selects the provider default
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyMaxTokens, d.LLM.MaxTokens),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
		Eval: domain.EvalSettings{
			RatePerSecond: s.getFloat(keyEvalRate, d.Eval.RatePerSecond),
		},
		Assistant: domain.AssistantSettings{
			Institution: s.getString(keyInstitution, d.Assistant.Institution),
		},
	}

	if key := s.APIKey(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}

	return settings, nil
}

// APIKey returns the API key for a provider: the provider's environment
// variable first, then llm.api_key when it belongs to the configured provider.
func (s *SettingsService) APIKey(provider domain.AIProvider) string {
	if env := provider.APIKeyEnv(); env != "" {
		if val, ok := s.lookupEnv(env); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	if s.getProvider(keyLLMProvider, domain.DefaultAppSettings().LLM.Provider) == provider {
		return s.configStore.GetString(keyLLMAPIKey)
	}
	return ""
}

// Save persists application settings.
// API keys taken from the environment are never written to the store.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyCatalog, settings.Paths.Catalog},
		{keyRawDir, settings.Paths.RawDir},
		{keyChunkTable, settings.Paths.ChunkTable},
		{keyPromptsDir, settings.Paths.PromptsDir},
		{keyChunkSize, settings.Ingest.ChunkSize},
		{keyOverlap, settings.Ingest.Overlap},
		{keyMinChars, settings.Ingest.MinChars},
		{keyWorkers, settings.Ingest.Workers},
		{keyRawGlob, settings.Ingest.RawGlob},
		{keyPDFToText, settings.Ingest.PDFToText},
		{keyTopK, settings.Retrieval.K},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyTemperature, settings.LLM.Temperature},
		{keyMaxTokens, settings.LLM.MaxTokens},
		{keyServerAddr, settings.Server.Addr},
		{keyEvalRate, settings.Eval.RatePerSecond},
		{keyInstitution, settings.Assistant.Institution},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" && !s.apiKeyFromEnv(settings.LLM.Provider, settings.LLM.APIKey) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks that the settings can drive an ingestion or a query.
// All problems are reported together.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...))
	}

	paths := []struct{ key, val string }{
		{keyCatalog, settings.Paths.Catalog},
		{keyRawDir, settings.Paths.RawDir},
		{keyChunkTable, settings.Paths.ChunkTable},
	}
	for _, p := range paths {
		if strings.TrimSpace(p.val) == "" {
			invalid("%s must not be empty", p.key)
		}
	}

	ing := settings.Ingest
	if ing.ChunkSize <= 0 {
		invalid("%s must be positive, got %d", keyChunkSize, ing.ChunkSize)
	}
	if ing.Overlap < 0 {
		invalid("%s must not be negative, got %d", keyOverlap, ing.Overlap)
	}
	if ing.ChunkSize > 0 && ing.Overlap >= ing.ChunkSize {
		errs = append(errs, fmt.Errorf("%w: %s=%d, %s=%d",
			domain.ErrInvalidWindow, keyOverlap, ing.Overlap, keyChunkSize, ing.ChunkSize))
	}
	if ing.MinChars < 0 {
		invalid("%s must not be negative, got %d", keyMinChars, ing.MinChars)
	}
	if ing.Workers < 1 {
		invalid("%s must be at least 1, got %d", keyWorkers, ing.Workers)
	}

	if settings.Retrieval.K < 1 {
		invalid("%s must be at least 1, got %d", keyTopK, settings.Retrieval.K)
	}

	if !settings.LLM.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, settings.LLM.Provider))
	}
	if settings.LLM.Temperature < 0 || settings.LLM.Temperature > maxTemperature {
		invalid("%s must be between 0 and %.0f, got %g", keyTemperature, maxTemperature, settings.LLM.Temperature)
	}
	if settings.LLM.MaxTokens < 1 {
		invalid("%s must be at least 1, got %d", keyMaxTokens, settings.LLM.MaxTokens)
	}
	if settings.Eval.RatePerSecond < 0 {
		invalid("%s must not be negative, got %g", keyEvalRate, settings.Eval.RatePerSecond)
	}

	return errors.Join(errs...)
}

// apiKeyFromEnv reports whether key is the one supplied by the environment.
func (s *SettingsService) apiKeyFromEnv(provider domain.AIProvider, key string) bool {
	env := provider.APIKeyEnv()
	if env == "" {
		return false
	}
	val, ok := s.lookupEnv(env)
	return ok && strings.TrimSpace(val) == key
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetInt(key)
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetFloat(key)
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := strings.ToLower(s.configStore.GetString(key))
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
