package driving

import (
	"context"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

// AskService answers questions over the indexed regulations.
type AskService interface {
	// Ask retrieves context (when requested), builds the message sequence and
	// runs it through the selected generator.
	// Generation failures are returned wrapped in domain.ErrGeneration.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResponse, error)
}
