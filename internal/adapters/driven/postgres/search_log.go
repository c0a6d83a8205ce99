package postgres

import (
	"context"
	"fmt"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchLogStore = (*SearchLogStore)(nil)

// SearchLogStore implements driven.SearchLogStore on PostgreSQL. Entries are
// insert-only; the pipeline never reads them back.
type SearchLogStore struct {
	db *DB
}

// NewSearchLogStore creates a new PostgreSQL-backed audit log.
func NewSearchLogStore(db *DB) *SearchLogStore {
	return &SearchLogStore{db: db}
}

// Record inserts one completed-search entry.
func (s *SearchLogStore) Record(ctx context.Context, entry domain.SearchLogEntry) error {
	const query = `
		INSERT INTO search_logs (query, total_hits, top_score, used_rerank, took_ms)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query,
		entry.Query,
		entry.TotalHits,
		entry.TopScore,
		entry.UsedRerank,
		entry.TookMillis,
	)
	if err != nil {
		return fmt.Errorf("failed to record search log: %w", err)
	}
	return nil
}
