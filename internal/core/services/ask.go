package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions, grounding them in retrieved chunks unless
// retrieval is disabled for the request.
type AskService struct {
	retriever  driving.Retriever
	generators driven.GeneratorFactory
	formatter  *ContextFormatter
	chat       driven.ChatOptions
}

// NewAskService creates a new ask service.
// retriever may be nil, in which case only requests without RAG succeed.
func NewAskService(
	retriever driving.Retriever,
	generators driven.GeneratorFactory,
	formatter *ContextFormatter,
	chat driven.ChatOptions,
) *AskService {
	return &AskService{
		retriever:  retriever,
		generators: generators,
		formatter:  formatter,
		chat:       chat,
	}
}

// Ask answers one question.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if req.K < 0 {
		return nil, fmt.Errorf("%w: k must not be negative", domain.ErrInvalidInput)
	}
	k := req.K
	if k == 0 {
		k = domain.DefaultTopK
	}

	provider := s.generators.Default()
	if req.Provider != "" {
		provider = domain.AIProvider(strings.ToLower(strings.TrimSpace(req.Provider)))
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}

	gen, err := s.generators.Create(provider, req.Model)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrGeneration, provider, err)
	}
	defer gen.Close()

	var (
		chunks   []domain.ScoredChunk
		messages []domain.Message
	)
	if req.UseRAG {
		if s.retriever == nil {
			return nil, fmt.Errorf("%w: no chunk table loaded", domain.ErrInitialization)
		}
		chunks, err = s.retriever.Query(ctx, question, k)
		if err != nil {
			return nil, fmt.Errorf("retrieve: %w", err)
		}
		messages, err = s.formatter.BuildMessages(question, FormatContext(chunks))
	} else {
		messages, err = s.formatter.DirectMessages(question)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("Asking %s/%s with %d messages (%d chunks)", gen.Name(), gen.ModelName(), len(messages), len(chunks))

	answer, err := gen.Chat(ctx, messages, s.chat)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrGeneration, gen.Name(), err)
	}

	resp := &domain.AskResponse{
		Answer:   strings.TrimSpace(answer),
		Provider: gen.Name(),
		Model:    gen.ModelName(),
		RAG:      req.UseRAG,
	}
	if req.ShowSources && req.UseRAG {
		resp.Sources = Sources(chunks)
	}
	return resp, nil
}

// Sources summarises retrieved chunks for callers, preserving their order.
func Sources(chunks []domain.ScoredChunk) []domain.SourceQuote {
	quotes := make([]domain.SourceQuote, len(chunks))
	for i, sc := range chunks {
		title := sc.Chunk.Title
		if title == "" {
			title = sc.Chunk.DocID
		}
		var page *int
		if sc.Chunk.Page != nil {
			page = domain.PageRef(*sc.Chunk.Page)
		}
		quotes[i] = domain.SourceQuote{
			Title:   title,
			Page:    page,
			URL:     sc.Chunk.URL,
			Snippet: Snippet(sc.Chunk.Text, domain.SnippetLength),
		}
	}
	return quotes
}

// Snippet returns the first n characters of text with line breaks
// replaced by spaces.
func Snippet(text string, n int) string {
	if utf8.RuneCountInString(text) > n {
		text = string([]rune(text)[:n])
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
}
