package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// EvalService runs a gold question set through the ask path.
type EvalService interface {
	// Run reads gold JSONL items from r, asks each one and writes CSV rows to w.
	Run(ctx context.Context, r io.Reader, w io.Writer, opts domain.EvalOptions) (*domain.EvalSummary, error)
}
