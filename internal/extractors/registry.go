package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches files to extractors by lowercase extension.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor for every extension it handles.
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.Extensions() {
		r.byExt[strings.ToLower(ext)] = extractor
	}
}

// For returns the extractor for a file path.
// The returned error wraps domain.ErrUnsupportedExtension and names the
// sniffed content type so the operator can see what the file really is.
func (r *Registry) For(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	extractor, ok := r.byExt[ext]
	r.mu.RUnlock()
	if ok {
		return extractor, nil
	}

	detected := "unknown"
	if mt, err := mimetype.DetectFile(path); err == nil && mt != nil {
		detected = mt.String()
	}
	if ext == "" {
		ext = "(none)"
	}
	return nil, fmt.Errorf("%w: %s (detected %s)", domain.ErrUnsupportedExtension, ext, detected)
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
