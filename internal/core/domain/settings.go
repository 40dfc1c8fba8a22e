package domain

const unknownDescription = "Unknown"

// AIProvider identifies a generation service provider.
type AIProvider string

// Available generation providers.
const (
	// AIProviderOpenRouter is the OpenRouter OpenAI-compatible gateway.
	AIProviderOpenRouter AIProvider = "openrouter"

	// AIProviderDeepSeek is the DeepSeek OpenAI-compatible API.
	AIProviderDeepSeek AIProvider = "deepseek"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// AllAIProviders lists the providers in display order.
var AllAIProviders = []AIProvider{
	AIProviderOpenRouter,
	AIProviderDeepSeek,
	AIProviderOpenAI,
	AIProviderAnthropic,
	AIProviderOllama,
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenRouter, AIProviderDeepSeek, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != AIProviderOllama
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case AIProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenRouter:
		return "OpenRouter (cloud gateway)"
	case AIProviderDeepSeek:
		return "DeepSeek (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// PathSettings holds the working locations of one process.
type PathSettings struct {
	// Catalog is the CSV file listing the documents to ingest.
	Catalog string

	// RawDir is the directory holding the physical documents.
	RawDir string

	// ChunkTable is the persisted chunk table file.
	ChunkTable string

	// PromptsDir holds user-editable prompt templates.
	PromptsDir string
}

// IngestSettings holds ingestion behaviour configuration.
type IngestSettings struct {
	// ChunkSize is the window size in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int

	// MinChars is the minimum normalised page length kept.
	MinChars int

	// Workers is the number of documents extracted concurrently.
	Workers int

	// RawGlob selects files inside RawDir.
	RawGlob string

	// PDFToText is the pdftotext executable used by the fallback PDF backend.
	PDFToText string
}

// RetrievalSettings holds query-time retrieval configuration.
type RetrievalSettings struct {
	// K is the default number of chunks retrieved per question.
	K int
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the default generation provider.
	Provider AIProvider

	// Model overrides the provider's default model.
	Model string

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// APIKey is the API key. Environment variables take precedence.
	APIKey string

	// Temperature controls randomness.
	Temperature float64

	// MaxTokens bounds the answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// EvalSettings holds evaluation run configuration.
type EvalSettings struct {
	// RatePerSecond bounds generation calls during an evaluation run.
	RatePerSecond float64
}

// AssistantSettings holds prompt personalisation.
type AssistantSettings struct {
	// Institution is the name of the institution whose regulations are indexed.
	Institution string
}

// AppSettings is the aggregate of all application settings.
type AppSettings struct {
	Paths     PathSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
	LLM       LLMSettings
	Server    ServerSettings
	Eval      EvalSettings
	Assistant AssistantSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Paths: PathSettings{
			Catalog:    "data/sources.csv",
			RawDir:     "data/raw",
			ChunkTable: "data/processed/chunks.db",
			PromptsDir: "data/prompts",
		},
		Ingest: IngestSettings{
			ChunkSize: 3800,
			Overlap:   500,
			MinChars:  MinReadableChars,
			Workers:   1,
			RawGlob:   "*",
			PDFToText: "pdftotext",
		},
		Retrieval: RetrievalSettings{
			K: DefaultTopK,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenRouter,
			Temperature: 0.2,
			MaxTokens:   512,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
		Eval: EvalSettings{
			RatePerSecond: 1,
		},
		Assistant: AssistantSettings{
			Institution: "UFRO",
		},
	}
}
