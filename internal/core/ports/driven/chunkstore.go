package driven

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// ChunkTableWriter builds the persisted chunk table.
// The Chunk Store Builder is its only caller.
type ChunkTableWriter interface {
	// Replace atomically swaps the whole table for the given chunks.
	// Concurrent readers observe either the previous table or the new one.
	Replace(ctx context.Context, chunks []domain.Chunk, run domain.IngestRun) error

	// Path returns the table location.
	Path() string
}

// ChunkTableReader gives read-only access to the persisted chunk table.
// It is the sole contract between ingestion and retrieval.
type ChunkTableReader interface {
	// Load returns every chunk in insertion order plus the run that built them.
	// Returns domain.ErrInitialization when the table is absent or unreadable.
	Load(ctx context.Context) ([]domain.Chunk, *domain.IngestRun, error)

	// Path returns the table location.
	Path() string
}
