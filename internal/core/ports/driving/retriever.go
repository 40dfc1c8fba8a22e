package driving

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// Retriever ranks persisted chunks for a question.
type Retriever interface {
	// Query returns at most k chunks ordered by descending relevance.
	// Ties keep chunk table order.
	Query(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)

	// Reload re-reads the chunk table and swaps the index atomically.
	Reload(ctx context.Context) error

	// Size returns the number of indexed chunks.
	Size() int
}
