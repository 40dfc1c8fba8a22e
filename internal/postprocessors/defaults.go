package postprocessors

import (
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/postprocessors/chunker"
	"github.com/custodia-labs/normativa/internal/postprocessors/normaliser"
)

// DefaultOrder is the processor chain used by ingestion.
var DefaultOrder = []string{"normaliser", "chunker"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("normaliser", buildNormaliser)
	r.Register("chunker", buildChunker)
}

// buildNormaliser creates a normaliser processor from generic config.
// Supported config keys:
//   - min_chars (int): Minimum normalised page length kept (default: 30)
func buildNormaliser(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []normaliser.Option

	if minChars, ok := getIntFromConfig(cfg, "min_chars"); ok {
		opts = append(opts, normaliser.WithMinChars(minChars))
	}

	return normaliser.New(opts...), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 3800)
//   - overlap (int): Overlapping characters between chunks (default: 500)
//
// Returns domain.ErrInvalidWindow when overlap is not smaller than chunk_size.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	p := chunker.New(opts...)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
