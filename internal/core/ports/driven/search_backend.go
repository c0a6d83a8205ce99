package driven

import (
	"context"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// SearchBackend is the full-text search collaborator (OpenSearch-compatible
// or embedded). Implementations must be safe for concurrent use across
// overlapping requests and must honor context cancellation.
type SearchBackend interface {
	// Search executes one structured boolean/should query and returns the
	// ordered hits plus the backend's total match count. A transport or
	// query error is returned as an error; a zero-hit response is a nil
	// error with an empty slice - the two are never conflated.
	Search(ctx context.Context, query domain.BackendQuery) ([]domain.Hit, int, error)

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error
}
