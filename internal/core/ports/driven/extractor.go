package driven

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// Extractor produces per-page text from a physical file.
// Each extractor handles a fixed set of file extensions.
type Extractor interface {
	// Extensions returns the lowercase extensions handled, including the dot.
	Extensions() []string

	// Extract reads the file and returns its pages.
	// A document without readable text is reported through Extraction.NeedsOCR,
	// not through an error.
	Extract(ctx context.Context, path string) (*domain.Extraction, error)
}

// ExtractorRegistry dispatches files to extractors by extension.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(extractor Extractor)

	// For returns the extractor for a file path.
	// Returns domain.ErrUnsupportedExtension when none is registered.
	For(path string) (Extractor, error)
}

// TextBackend is one text extraction strategy.
// Tiered extractors try backends in order until one produces acceptable text,
// so additional backends (e.g. OCR) slot in without touching chunking or persistence.
type TextBackend interface {
	// Name returns the backend name for logging and reporting.
	Name() string

	// Pages returns one text block per page. A page that fails to extract
	// contributes an empty string; the failure is reported in BackendResult.Failed.
	Pages(ctx context.Context, path string) (*BackendResult, error)
}

// BackendResult is the output of a TextBackend.
type BackendResult struct {
	// Pages holds the text of each page in order.
	Pages []string

	// Failed lists 1-based pages that could not be extracted.
	Failed []int
}

// RawFileSource lists the physical files available for ingestion.
type RawFileSource interface {
	// List returns the files in canonical order. Catalog records are
	// resolved against this order and the first match wins.
	List(ctx context.Context) ([]string, error)

	// Dir returns the directory the files are listed from.
	Dir() string
}
