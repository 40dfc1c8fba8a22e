package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
)

// Ensure ChunkTable implements the interfaces.
var (
	_ driven.ChunkTableWriter = (*ChunkTable)(nil)
	_ driven.ChunkTableReader = (*ChunkTable)(nil)
)

// ChunkTable is an in-memory chunk table.
// Replace swaps the whole slice under a lock, so readers see either
// the previous table or the new one.
type ChunkTable struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	run    *domain.IngestRun
	loaded bool
}

// NewChunkTable creates an empty, unbuilt chunk table.
// Load fails with domain.ErrInitialization until Replace has been called.
func NewChunkTable() *ChunkTable {
	return &ChunkTable{}
}

// NewChunkTableWith creates a chunk table already holding the given chunks.
func NewChunkTableWith(chunks []domain.Chunk) *ChunkTable {
	t := &ChunkTable{}
	t.chunks = copyChunks(chunks)
	t.run = &domain.IngestRun{ID: "memory", ChunkCount: len(chunks)}
	t.loaded = true
	return t
}

// Path returns a pseudo path for logging.
func (t *ChunkTable) Path() string {
	return ":memory:"
}

// Replace swaps the table for the given chunks.
func (t *ChunkTable) Replace(ctx context.Context, chunks []domain.Chunk, run domain.IngestRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := copyChunks(chunks)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.chunks = next
	t.run = &run
	t.loaded = true
	return nil
}

// Load returns a copy of the chunks and the run that wrote them.
func (t *ChunkTable) Load(ctx context.Context) ([]domain.Chunk, *domain.IngestRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.loaded {
		return nil, nil, fmt.Errorf("%w: in-memory chunk table was never built", domain.ErrInitialization)
	}
	run := *t.run
	return copyChunks(t.chunks), &run, nil
}

// copyChunks copies the slice and every page pointer so callers cannot
// mutate stored chunks.
func copyChunks(src []domain.Chunk) []domain.Chunk {
	if src == nil {
		return nil
	}
	dst := make([]domain.Chunk, len(src))
	for i, c := range src {
		if c.Page != nil {
			c.Page = domain.PageRef(*c.Page)
		}
		dst[i] = c
	}
	return dst
}
