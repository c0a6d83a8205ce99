package driving

import (
	"context"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// SearchService is the pipeline entry point: multi-strategy search with
// confidence-gated semantic re-ranking.
type SearchService interface {
	// Search resolves a noisy product-name query against the catalog and
	// returns a ranked, confidence-scored candidate list. maxResults must
	// be within [1, 100]. An empty query or out-of-range size returns
	// domain.ErrInvalidInput before any collaborator call; total backend
	// unavailability returns an error wrapping domain.ErrBackendUnavailable.
	Search(ctx context.Context, query string, maxResults int) (*domain.SearchResult, error)
}
