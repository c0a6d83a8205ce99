package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
	"github.com/custodia-labs/skumatch-core/internal/metrics"
)

// Sub-fields of the catalog name field, as provisioned in the index schema.
const (
	fieldKeyword = "sku_name.keyword"
	fieldExact   = "sku_name.exact"
	fieldName    = "sku_name"
	fieldNgram   = "sku_name.ngram"
)

const fuzzinessAuto = "AUTO"

// DispatcherConfig tunes per-strategy execution. The result caps bound
// aggregation cost and are tunables, not architectural constants.
type DispatcherConfig struct {
	// Timeout bounds each individual strategy query
	Timeout time.Duration

	// ResultSize caps hits per strategy
	ResultSize int

	// RelaxedResultSize caps hits for the relaxed strategy, which casts
	// the widest net
	RelaxedResultSize int
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Timeout:           10 * time.Second,
		ResultSize:        10,
		RelaxedResultSize: 15,
	}
}

// dispatcher runs the ordered strategies against the backend as a two-phase
// plan: exact alone first (the only short-circuit), then the remaining
// strategies fanned out concurrently and joined before aggregation.
type dispatcher struct {
	backend driven.SearchBackend
	cfg     DispatcherConfig
	logger  *slog.Logger
}

func newDispatcher(backend driven.SearchBackend, cfg DispatcherConfig, logger *slog.Logger) *dispatcher {
	if cfg.ResultSize <= 0 {
		cfg.ResultSize = DefaultDispatcherConfig().ResultSize
	}
	if cfg.RelaxedResultSize <= 0 {
		cfg.RelaxedResultSize = DefaultDispatcherConfig().RelaxedResultSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDispatcherConfig().Timeout
	}
	return &dispatcher{backend: backend, cfg: cfg, logger: logger}
}

// Dispatch executes the strategies in their fixed order and returns one
// StrategyResult per executed strategy. When exact returns a hit, the
// remaining strategies never run and produce no result. A failing strategy
// is recorded and never aborts its siblings.
func (d *dispatcher) Dispatch(ctx context.Context, raw string, normalized domain.NormalizedQuery) []domain.StrategyResult {
	exact := d.run(ctx, domain.StrategyExact, d.buildExact(raw))
	if exact.Succeeded && len(exact.Hits) > 0 {
		metrics.ExactMatchExitsTotal.Inc()
		d.logger.Debug("exact match found, stopping dispatch", "hits", len(exact.Hits))
		return []domain.StrategyResult{exact}
	}

	rest := domain.Strategies[1:]
	results := make([]domain.StrategyResult, len(rest))

	var wg sync.WaitGroup
	for i, strategy := range rest {
		wg.Add(1)
		go func(i int, s domain.Strategy) {
			defer wg.Done()
			results[i] = d.run(ctx, s, d.build(s, normalized))
		}(i, strategy)
	}
	wg.Wait()

	return append([]domain.StrategyResult{exact}, results...)
}

func (d *dispatcher) run(ctx context.Context, strategy domain.Strategy, query domain.BackendQuery) domain.StrategyResult {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	hits, total, err := d.backend.Search(ctx, query)
	if err != nil {
		metrics.StrategyFailuresTotal.WithLabelValues(string(strategy)).Inc()
		d.logger.Warn("strategy failed", "strategy", strategy, "error", err)
		return domain.StrategyResult{
			Strategy:    strategy,
			Succeeded:   false,
			ErrorDetail: err.Error(),
		}
	}

	return domain.StrategyResult{
		Strategy:   strategy,
		Succeeded:  true,
		Hits:       hits,
		TotalFound: total,
	}
}

func (d *dispatcher) build(strategy domain.Strategy, normalized domain.NormalizedQuery) domain.BackendQuery {
	switch strategy {
	case domain.StrategyNormalized:
		return d.buildNormalized(normalized)
	case domain.StrategyFuzzy:
		return d.buildFuzzy(normalized)
	case domain.StrategyPartial:
		return d.buildPartial(normalized)
	case domain.StrategyNgram:
		return d.buildNgram(normalized)
	default:
		return d.buildRelaxed(normalized)
	}
}

// buildExact matches the raw query against the untokenized keyword field.
func (d *dispatcher) buildExact(raw string) domain.BackendQuery {
	return domain.BackendQuery{
		Clauses: []domain.QueryClause{
			{Type: domain.ClauseTerm, Field: fieldKeyword, Text: raw},
		},
		Size: d.cfg.ResultSize,
	}
}

// buildNormalized is a boosted analyzed match over the canonicalized text.
func (d *dispatcher) buildNormalized(normalized domain.NormalizedQuery) domain.BackendQuery {
	return domain.BackendQuery{
		Clauses: []domain.QueryClause{
			{Type: domain.ClauseMatch, Field: fieldExact, Text: normalized.Text, Boost: 2.0},
		},
		Size: d.cfg.ResultSize,
	}
}

// buildFuzzy combines a native edit-distance query with a softer analyzed
// match, both at AUTO fuzziness.
func (d *dispatcher) buildFuzzy(normalized domain.NormalizedQuery) domain.BackendQuery {
	return domain.BackendQuery{
		Clauses: []domain.QueryClause{
			{Type: domain.ClauseFuzzy, Field: fieldName, Text: normalized.Text, Fuzziness: fuzzinessAuto, Boost: 2.0},
			{Type: domain.ClauseMatch, Field: fieldName, Text: normalized.Text, Fuzziness: fuzzinessAuto, Boost: 1.5},
		},
		Size: d.cfg.ResultSize,
	}
}

// buildPartial wildcards every extracted SKU pattern and CJK word, falling
// back to a whole-query wildcard when nothing was extracted.
func (d *dispatcher) buildPartial(normalized domain.NormalizedQuery) domain.BackendQuery {
	var clauses []domain.QueryClause
	for _, pattern := range normalized.SKUPatterns {
		clauses = append(clauses, domain.QueryClause{
			Type: domain.ClauseWildcard, Field: fieldName, Text: wildcard(pattern), Boost: 2.0,
		})
	}
	for _, word := range normalized.CJKWords {
		clauses = append(clauses, domain.QueryClause{
			Type: domain.ClauseWildcard, Field: fieldName, Text: wildcard(word), Boost: 1.5,
		})
	}
	if len(clauses) == 0 {
		clauses = append(clauses, domain.QueryClause{
			Type: domain.ClauseWildcard, Field: fieldName, Text: wildcard(normalized.Text),
		})
	}
	return domain.BackendQuery{
		Clauses:            clauses,
		MinimumShouldMatch: 1,
		Size:               d.cfg.ResultSize,
	}
}

// buildNgram is a sub-token match requiring 70% of the generated n-grams to hit.
func (d *dispatcher) buildNgram(normalized domain.NormalizedQuery) domain.BackendQuery {
	return domain.BackendQuery{
		Clauses: []domain.QueryClause{
			{Type: domain.ClauseMatch, Field: fieldNgram, Text: normalized.Text, MinShouldMatch: "70%"},
		},
		Size: d.cfg.ResultSize,
	}
}

// buildRelaxed pairs a match and a wildcard per extracted term of length >= 2,
// falling back to a half-match query over the whole text when the term union
// is empty.
func (d *dispatcher) buildRelaxed(normalized domain.NormalizedQuery) domain.BackendQuery {
	var clauses []domain.QueryClause
	for _, term := range normalized.Terms() {
		if utf8.RuneCountInString(term) < 2 {
			continue
		}
		clauses = append(clauses,
			domain.QueryClause{Type: domain.ClauseMatch, Field: fieldName, Text: term, Boost: 1.0},
			domain.QueryClause{Type: domain.ClauseWildcard, Field: fieldName, Text: wildcard(term), Boost: 0.8},
		)
	}
	if len(clauses) == 0 {
		clauses = append(clauses, domain.QueryClause{
			Type: domain.ClauseMatch, Field: fieldName, Text: normalized.Text, MinShouldMatch: "50%",
		})
	}
	return domain.BackendQuery{
		Clauses:            clauses,
		MinimumShouldMatch: 1,
		Size:               d.cfg.RelaxedResultSize,
	}
}

func wildcard(term string) string {
	return fmt.Sprintf("*%s*", term)
}
