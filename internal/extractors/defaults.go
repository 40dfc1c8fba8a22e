package extractors

import (
	"github.com/custodia-labs/normativa/internal/extractors/html"
	"github.com/custodia-labs/normativa/internal/extractors/pdf"
	"github.com/custodia-labs/normativa/internal/extractors/plaintext"
)

// RegisterDefaults registers the PDF, plain text and HTML extractors.
// pdftotext names the poppler executable used by the PDF fallback tier.
func RegisterDefaults(r *Registry, pdftotext string) {
	r.Register(pdf.New(pdftotext))
	r.Register(plaintext.New())
	r.Register(html.New())
}

// NewDefaultRegistry creates a registry with the built-in extractors.
func NewDefaultRegistry(pdftotext string) *Registry {
	r := NewRegistry()
	RegisterDefaults(r, pdftotext)
	return r
}
