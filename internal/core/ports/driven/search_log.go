package driven

import (
	"context"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// SearchLogStore persists a write-only audit trail of completed searches.
// The pipeline never reads it back; failures are logged and absorbed.
type SearchLogStore interface {
	// Record stores one audit entry
	Record(ctx context.Context, entry domain.SearchLogEntry) error
}
