package driven

import (
	"context"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// Reranker is the semantic re-ranking collaborator, invoked only when the
// confidence verdict is low. A malformed collaborator reply is an error;
// the caller absorbs it and falls back to lexical ranking.
type Reranker interface {
	// Rerank scores the candidates against the query and returns them in
	// the collaborator's preferred order
	Rerank(ctx context.Context, req domain.RerankRequest) (*domain.RerankResponse, error)

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the re-ranker client
	Close() error
}
