package driven

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// PostProcessor turns extracted pages into chunks.
// PostProcessors are chained in a pipeline (e.g., normalisation, chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor creates chunks (e.g., normaliser), it receives nil and returns new chunks.
	// If the processor modifies chunks (e.g., chunker), it receives and returns chunks.
	Process(ctx context.Context, doc *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error)
}
