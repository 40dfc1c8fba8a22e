package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// contextSeparator separates fragments in a context block.
const contextSeparator = "\n---\n"

// noContextBlock stands in for an empty retrieval so the model sees
// explicitly that there is no evidence.
const noContextBlock = "(sin fragmentos recuperados)"

// SourceTag renders the citation tag of a chunk:
// "[Fuente: <title>, p.<page> | Vigencia: <vigencia>]".
// The page is omitted when unknown and the title falls back to the doc_id.
func SourceTag(c domain.Chunk) string {
	ref := c.Title
	if ref == "" {
		ref = c.DocID
	}
	if c.Page != nil {
		ref += ", p." + strconv.Itoa(*c.Page)
	}
	return fmt.Sprintf("[Fuente: %s | Vigencia: %s]", ref, c.Validity)
}

// FormatContext renders chunks in the given order, each preceded by its
// citation tag.
func FormatContext(chunks []domain.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, sc := range chunks {
		parts[i] = SourceTag(sc.Chunk) + "\n" + sc.Chunk.Text + "\n"
	}
	return strings.Join(parts, contextSeparator)
}

// ContextFormatter builds the message sequences handed to generation.
type ContextFormatter struct {
	prompts     driven.PromptStore
	institution string
}

// NewContextFormatter creates a formatter. The institution name, the question
// and the context block fill the named placeholders of the prompts.
func NewContextFormatter(prompts driven.PromptStore, institution string) *ContextFormatter {
	return &ContextFormatter{prompts: prompts, institution: institution}
}

// BuildMessages returns the grounded sequence: a system instruction with the
// citation and abstention policy, then the question with its context.
func (f *ContextFormatter) BuildMessages(question, contextBlock string) ([]domain.Message, error) {
	system, err := f.prompts.Load(driven.PromptRAGSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptRAGSystem, err)
	}
	user, err := f.prompts.Load(driven.PromptRAGUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptRAGUser, err)
	}

	if strings.TrimSpace(contextBlock) == "" {
		contextBlock = noContextBlock
	}

	fill := strings.NewReplacer(
		driven.PlaceholderInstitution, f.institution,
		driven.PlaceholderQuestion, question,
		driven.PlaceholderContext, contextBlock,
	)
	return []domain.Message{
		{Role: domain.RoleSystem, Content: fill.Replace(system)},
		{Role: domain.RoleUser, Content: fill.Replace(user)},
	}, nil
}

// DirectMessages returns the sequence used when retrieval is disabled.
func (f *ContextFormatter) DirectMessages(question string) ([]domain.Message, error) {
	system, err := f.prompts.Load(driven.PromptDirectSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptDirectSystem, err)
	}
	return []domain.Message{
		{Role: domain.RoleSystem, Content: strings.ReplaceAll(system, driven.PlaceholderInstitution, f.institution)},
		{Role: domain.RoleUser, Content: question},
	}, nil
}
