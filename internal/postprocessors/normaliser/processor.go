// Package normaliser provides text cleanup and the processor that turns
// extracted pages into page-level chunks.
package normaliser

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

var (
	lineBreaks      = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	horizontalSpace = regexp.MustCompile(`[\t\v\f\p{Zs}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Normalize canonicalises whitespace in extracted text.
// Line breaks become "\n", horizontal whitespace runs become one space,
// three or more newlines become one blank line, and the result is trimmed.
// Normalize is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = lineBreaks.Replace(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Processor normalises every extracted page and keeps the readable ones.
type Processor struct {
	minChars int
}

// Option configures the normaliser processor.
type Option func(*Processor)

// WithMinChars sets the minimum normalised page length kept.
func WithMinChars(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minChars = n
		}
	}
}

// New creates a new normaliser processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{minChars: domain.MinReadableChars}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "normaliser"
}

// MinChars returns the minimum page length kept.
func (p *Processor) MinChars() int {
	return p.minChars
}

// Process creates one chunk per readable page.
// Input chunks are ignored. A document flagged for OCR yields its placeholder.
func (p *Processor) Process(_ context.Context, doc *domain.ExtractedDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Extraction.NeedsOCR {
		return []domain.Chunk{domain.OCRPlaceholder(doc.Record, doc.SourcePath)}, nil
	}

	chunks := make([]domain.Chunk, 0, len(doc.Extraction.Pages))
	for _, page := range doc.Extraction.Pages {
		text := Normalize(page.Text)
		if text == "" || utf8.RuneCountInString(text) < p.minChars {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			DocID:      doc.Record.DocID,
			Title:      doc.Record.Title,
			Page:       domain.PageRef(page.Index),
			URL:        doc.Record.URL,
			Validity:   doc.Record.Validity,
			Text:       text,
			SourcePath: doc.SourcePath,
		})
	}
	return chunks, nil
}
