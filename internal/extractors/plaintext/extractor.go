// Package plaintext provides an Extractor for plain text documents.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/extractors/textdecode"
	"github.com/custodia-labs/normativa/internal/postprocessors/normaliser"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// BackendName identifies this extractor in extraction results.
const BackendName = "plaintext"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text"}
}

// Extract decodes the file, normalises it and returns it as a single page.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text := normaliser.Normalize(textdecode.Decode(data, "text/plain"))

	return &domain.Extraction{
		Pages:   []domain.ExtractedPage{{Index: 1, Text: text}},
		Backend: BackendName,
	}, nil
}
