package driving

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// IngestService builds the chunk table from the catalog and the raw document directory.
type IngestService interface {
	// Run performs a full ingestion and atomically replaces the chunk table.
	// The report is returned even when the run fails with domain.ErrEmptyResultSet.
	Run(ctx context.Context) (*domain.IngestReport, error)
}
