package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driving"
	"github.com/custodia-labs/skumatch-core/internal/metrics"
	"github.com/custodia-labs/skumatch-core/internal/runtime"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// Bounds on the requested result count.
const (
	minResults = 1
	maxResults = 100
)

// Config bundles the pipeline tunables.
type Config struct {
	Dispatcher DispatcherConfig
	Gate       GateConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Dispatcher: DefaultDispatcherConfig(),
		Gate:       DefaultGateConfig(),
	}
}

// searchService implements the SearchService interface. The pipeline is a
// pure function of its inputs plus two stateless collaborators; nothing is
// shared between requests.
type searchService struct {
	dispatcher *dispatcher
	gate       *gate
	searchLog  driven.SearchLogStore // optional, may be nil
	logger     *slog.Logger
}

// NewSearchService creates a new SearchService. The re-ranker is accessed
// dynamically via runtime.Services; budget and searchLog may be nil.
func NewSearchService(
	backend driven.SearchBackend,
	services *runtime.Services,
	budget driven.RerankBudget,
	searchLog driven.SearchLogStore,
	cfg Config,
	logger *slog.Logger,
) driving.SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		dispatcher: newDispatcher(backend, cfg.Dispatcher, logger),
		gate:       newGate(services, budget, cfg.Gate, logger),
		searchLog:  searchLog,
		logger:     logger,
	}
}

// Search runs the full pipeline: normalize, dispatch, aggregate, rank, and
// conditionally re-rank. Only invalid input and total backend unavailability
// reach the caller as errors.
func (s *searchService) Search(ctx context.Context, query string, size int) (*domain.SearchResult, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		metrics.SearchesTotal.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if size < minResults || size > maxResults {
		metrics.SearchesTotal.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("size %d outside [%d, %d]: %w", size, minResults, maxResults, domain.ErrInvalidInput)
	}

	normalized := domain.Normalize(query)
	s.logger.Debug("query analyzed",
		"query", query,
		"normalized", normalized.Text,
		"sku_patterns", normalized.SKUPatterns,
		"cjk_words", normalized.CJKWords,
		"numbers", normalized.Numbers,
	)

	results := s.dispatcher.Dispatch(ctx, query, normalized)

	if allFailed(results) {
		metrics.SearchesTotal.WithLabelValues("backend_unavailable").Inc()
		return nil, fmt.Errorf("all %d strategies failed (%s): %w",
			len(results), results[0].ErrorDetail, domain.ErrBackendUnavailable)
	}

	candidates := Aggregate(results)
	ranked := Rank(candidates, size)
	ranked, verdict, usedRerank := s.gate.Apply(ctx, query, ranked)

	result := &domain.SearchResult{
		Query:      query,
		TotalHits:  len(candidates),
		Results:    ranked,
		Verdict:    verdict,
		UsedRerank: usedRerank,
		TookMillis: time.Since(start).Milliseconds(),
	}

	s.record(ctx, result)

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"used_rerank", usedRerank,
		"took_ms", result.TookMillis,
	)
	return result, nil
}

// allFailed reports whether every executed strategy errored, the only
// backend condition surfaced to the caller.
func allFailed(results []domain.StrategyResult) bool {
	for _, r := range results {
		if r.Succeeded {
			return false
		}
	}
	return true
}

func (s *searchService) record(ctx context.Context, result *domain.SearchResult) {
	if s.searchLog == nil {
		return
	}
	entry := domain.SearchLogEntry{
		Query:      result.Query,
		TotalHits:  result.TotalHits,
		TopScore:   result.Verdict.TopScore,
		UsedRerank: result.UsedRerank,
		TookMillis: result.TookMillis,
	}
	if err := s.searchLog.Record(ctx, entry); err != nil {
		s.logger.Warn("search log write failed", "error", err)
	}
}
