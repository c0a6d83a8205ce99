package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
	"github.com/custodia-labs/skumatch-core/internal/metrics"
	"github.com/custodia-labs/skumatch-core/internal/runtime"
)

// GateConfig tunes the confidence gate. The thresholds are empirically
// chosen constants, kept as configuration. RelevanceWeight sets the
// collaborator's share of the blended score; note that the backend score
// is unnormalized, so the blend is scale-dependent.
type GateConfig struct {
	ConfidenceThreshold float64
	ScoreGapRatio       float64
	Timeout             time.Duration
	RelevanceWeight     float64
}

// DefaultGateConfig returns sensible defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		ConfidenceThreshold: 25.0,
		ScoreGapRatio:       2.0,
		Timeout:             30 * time.Second,
		RelevanceWeight:     0.7,
	}
}

// gate decides whether lexical ranking is trustworthy and, when it is not,
// escalates to the semantic re-ranker. Two states only: CONFIDENT keeps the
// lexical ranking; AMBIGUOUS triggers the collaborator.
type gate struct {
	services *runtime.Services
	budget   driven.RerankBudget
	cfg      GateConfig
	logger   *slog.Logger
}

func newGate(services *runtime.Services, budget driven.RerankBudget, cfg GateConfig, logger *slog.Logger) *gate {
	if cfg.ConfidenceThreshold == 0 && cfg.ScoreGapRatio == 0 {
		cfg = DefaultGateConfig()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGateConfig().Timeout
	}
	if cfg.RelevanceWeight <= 0 || cfg.RelevanceWeight > 1 {
		cfg.RelevanceWeight = DefaultGateConfig().RelevanceWeight
	}
	return &gate{services: services, budget: budget, cfg: cfg, logger: logger}
}

// Apply returns the (possibly re-ranked) candidates, the confidence verdict,
// and whether a re-rank was applied. Re-ranker failure of any kind falls
// back to the lexical ranking and never fails the search.
func (g *gate) Apply(ctx context.Context, query string, ranked []domain.RankedCandidate) ([]domain.RankedCandidate, domain.ConfidenceVerdict, bool) {
	verdict := Verdict(ranked, g.cfg.ConfidenceThreshold, g.cfg.ScoreGapRatio)

	if len(ranked) == 0 {
		// AMBIGUOUS with nothing to re-rank
		return ranked, verdict, false
	}
	if verdict.IsHighConfidence {
		metrics.RerankTotal.WithLabelValues("skipped_confident").Inc()
		return ranked, verdict, false
	}

	reranker := g.services.Reranker()
	if reranker == nil {
		metrics.RerankTotal.WithLabelValues("unavailable").Inc()
		return ranked, verdict, false
	}

	if g.budget != nil {
		allowed, err := g.budget.Allow(ctx)
		if err != nil {
			// fail open: the lexical fallback is always available
			g.logger.Warn("rerank budget check failed", "error", err)
		} else if !allowed {
			metrics.RerankTotal.WithLabelValues("over_budget").Inc()
			g.logger.Info("rerank budget exhausted, keeping lexical ranking", "query", query)
			return ranked, verdict, false
		}
	}

	req := domain.RerankRequest{
		Query:      query,
		Candidates: make([]domain.RerankCandidate, len(ranked)),
	}
	for i, rc := range ranked {
		req.Candidates[i] = domain.RerankCandidate{
			Index:         i,
			Name:          rc.Name(),
			OriginalScore: rc.Score,
		}
	}

	rerankCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := reranker.Rerank(rerankCtx, req)
	if err != nil {
		metrics.RerankTotal.WithLabelValues("failed").Inc()
		g.logger.Warn("re-rank failed, falling back to lexical ranking",
			"query", query, "model", reranker.Model(), "error", err)
		return ranked, verdict, false
	}

	merged, ok := g.merge(ranked, resp)
	if !ok {
		metrics.RerankTotal.WithLabelValues("failed").Inc()
		g.logger.Warn("re-rank response rejected, falling back to lexical ranking",
			"query", query, "model", reranker.Model())
		return ranked, verdict, false
	}

	metrics.RerankTotal.WithLabelValues("applied").Inc()
	return merged, verdict, true
}

// merge applies the collaborator's ordering: the response order is the new
// rank order and is not re-sorted. Any out-of-range index rejects the whole
// response. Candidates the collaborator did not return are dropped - the
// response defines the result set.
func (g *gate) merge(ranked []domain.RankedCandidate, resp *domain.RerankResponse) ([]domain.RankedCandidate, bool) {
	if resp == nil || len(resp.Results) == 0 {
		return nil, false
	}

	merged := make([]domain.RankedCandidate, 0, len(resp.Results))
	for _, item := range resp.Results {
		if item.Index < 0 || item.Index >= len(ranked) {
			return nil, false
		}
		rc := ranked[item.Index]
		rc.RelevanceScore = item.RelevanceScore
		rc.RerankReason = item.Reason
		rc.OriginalScore = rc.Score
		rc.Score = item.RelevanceScore*g.cfg.RelevanceWeight + rc.OriginalScore*(1-g.cfg.RelevanceWeight)
		merged = append(merged, rc)
	}

	for i := range merged {
		merged[i].Rank = i + 1
	}
	return merged, true
}
