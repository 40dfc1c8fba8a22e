package pdf

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure StructuredBackend implements the interface.
var _ driven.TextBackend = (*StructuredBackend)(nil)

// StructuredBackendName identifies the in-process per-page backend.
const StructuredBackendName = "structured"

// StructuredBackend extracts text page by page with a pure Go PDF reader.
type StructuredBackend struct{}

// NewStructuredBackend creates a new structured backend.
func NewStructuredBackend() *StructuredBackend {
	return &StructuredBackend{}
}

// Name returns the backend name.
func (b *StructuredBackend) Name() string {
	return StructuredBackendName
}

// Pages returns one text block per physical page.
// A page that fails to extract contributes an empty string and is listed in Failed.
func (b *StructuredBackend) Pages(ctx context.Context, path string) (result *driven.BackendResult, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("read pdf %s: %v", path, rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	result = &driven.BackendResult{Pages: make([]string, 0, total)}
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, perr := pageText(r, i)
		if perr != nil {
			logger.Debug("pdf %s: page %d unreadable: %v", path, i, perr)
			result.Failed = append(result.Failed, i)
			text = ""
		}
		result.Pages = append(result.Pages, text)
	}
	return result, nil
}

// pageText extracts the plain text of one 1-based page.
func pageText(r *pdf.Reader, index int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("page %d: %v", index, rec)
		}
	}()

	page := r.Page(index)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
