package services

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// Resolver matches catalog records to raw files.
//
// Matching is first-match-wins over the file order it was built with:
// first the doc_id against the file name, then the title key. When several
// files could match, the earliest one is taken even if a later one is a
// better fit.
type Resolver struct {
	files []string
	stems []string
}

// NewResolver creates a resolver over files in canonical order.
func NewResolver(files []string) *Resolver {
	stems := make([]string, len(files))
	for i, f := range files {
		base := filepath.Base(f)
		stems[i] = fold(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	return &Resolver{files: files, stems: stems}
}

// Resolve returns the file for rec and whether one was found.
func (r *Resolver) Resolve(rec domain.SourceRecord) (string, bool) {
	if id := fold(strings.TrimSpace(rec.DocID)); id != "" {
		if path, ok := r.firstContaining(id); ok {
			return path, true
		}
	}
	if key := TitleKey(rec.Title); key != "" {
		if path, ok := r.firstContaining(key); ok {
			return path, true
		}
	}
	return "", false
}

func (r *Resolver) firstContaining(key string) (string, bool) {
	for i, stem := range r.stems {
		if strings.Contains(stem, key) {
			return r.files[i], true
		}
	}
	return "", false
}
