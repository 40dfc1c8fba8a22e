package domain

// DefaultTopK is the number of chunks retrieved when a caller does not say.
const DefaultTopK = 4

// SnippetLength is the maximum number of characters in a source snippet.
const SnippetLength = 250

// ScoredChunk is a chunk ranked for a query.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score. Higher is more relevant.
	Score float64
}

// AskRequest is a question posed through the query interface.
type AskRequest struct {
	// Question is the natural-language question.
	Question string

	// K is the number of chunks to retrieve (DefaultTopK when zero).
	K int

	// UseRAG enables retrieval and the citation/abstention policy.
	UseRAG bool

	// Provider selects the generation backend (configured default when empty).
	Provider string

	// Model overrides the provider's default model.
	Model string

	// ShowSources includes the retrieved sources in the response.
	ShowSources bool
}

// AskResponse is the answer produced for an AskRequest.
type AskResponse struct {
	Answer   string        `json:"answer"`
	Provider string        `json:"provider"`
	Model    string        `json:"model,omitempty"`
	RAG      bool          `json:"rag"`
	Sources  []SourceQuote `json:"sources,omitempty"`
}

// SourceQuote is a retrieved chunk summarised for callers.
type SourceQuote struct {
	Title   string `json:"title"`
	Page    *int   `json:"page"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
