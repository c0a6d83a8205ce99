package domain

import (
	"encoding/json"
	"math"
)

// Strategy identifies one named way of querying the search backend.
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyNormalized Strategy = "normalized"
	StrategyFuzzy      Strategy = "fuzzy"
	StrategyPartial    Strategy = "partial"
	StrategyNgram      Strategy = "ngram"
	StrategyRelaxed    Strategy = "relaxed"
)

// Strategies lists all strategies in dispatch order. The order is fixed
// and significant: exact runs first and is the only strategy that
// short-circuits the rest when it hits.
var Strategies = []Strategy{
	StrategyExact,
	StrategyNormalized,
	StrategyFuzzy,
	StrategyPartial,
	StrategyNgram,
	StrategyRelaxed,
}

// Hit is a single backend result. Identity is ID; Score is backend-assigned
// and only comparable within one strategy's query shape.
type Hit struct {
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
	Score  float64        `json:"score"`
}

// Name returns the product name carried in the hit source, if present.
func (h Hit) Name() string {
	if name, ok := h.Source["sku_name"].(string); ok {
		return name
	}
	return ""
}

// StrategyResult records the outcome of one executed strategy. Strategies
// not reached due to the exact-match early exit produce no result at all.
type StrategyResult struct {
	Strategy    Strategy `json:"strategy"`
	Succeeded   bool     `json:"succeeded"`
	Hits        []Hit    `json:"hits"`
	TotalFound  int      `json:"total_found"`
	ErrorDetail string   `json:"error,omitempty"`
}

// Candidate is a document that matched at least one strategy, with
// cross-strategy score accumulation. Invariants: MaxScore <= TotalScore
// and len(Strategies) >= 1.
type Candidate struct {
	ID         string         `json:"id"`
	Source     map[string]any `json:"source"`
	Strategies []Strategy     `json:"strategies"`
	TotalScore float64        `json:"total_score"`
	MaxScore   float64        `json:"max_score"`
}

// Name returns the product name from the candidate's seeding hit.
func (c *Candidate) Name() string {
	if name, ok := c.Source["sku_name"].(string); ok {
		return name
	}
	return ""
}

// MatchedBy reports whether the candidate was already hit by the strategy.
func (c *Candidate) MatchedBy(s Strategy) bool {
	for _, m := range c.Strategies {
		if m == s {
			return true
		}
	}
	return false
}

// RankedCandidate is a Candidate with its derived rank, combined score and
// confidence. Score starts as the backend MaxScore; a successful re-rank
// replaces it with the blended score and preserves the original in
// OriginalScore for audit.
type RankedCandidate struct {
	Candidate
	Rank           int     `json:"rank"`
	CombinedRank   float64 `json:"combined_rank"`
	Confidence     int     `json:"confidence"`
	Score          float64 `json:"score"`
	OriginalScore  float64 `json:"original_score"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
	RerankReason   string  `json:"rerank_reason,omitempty"`
}

// ConfidenceVerdict is the pipeline's self-assessment of whether lexical
// ranking alone is trustworthy. Computed once per completed search.
type ConfidenceVerdict struct {
	TopScore         float64 `json:"top_score"`
	SecondScore      float64 `json:"second_score"`
	GapRatio         float64 `json:"gap_ratio"`
	IsHighConfidence bool    `json:"is_high_confidence"`
	Reason           string  `json:"reason"`
}

// MarshalJSON encodes an infinite gap ratio (single-candidate case) as null,
// which encoding/json would otherwise reject.
func (v ConfidenceVerdict) MarshalJSON() ([]byte, error) {
	type alias ConfidenceVerdict
	out := struct {
		alias
		GapRatio any `json:"gap_ratio"`
	}{alias: alias(v), GapRatio: v.GapRatio}
	if math.IsInf(v.GapRatio, 1) {
		out.GapRatio = nil
	}
	return json.Marshal(out)
}

// SearchResult is the final ranked response for one search invocation.
type SearchResult struct {
	Query      string            `json:"query"`
	TotalHits  int               `json:"total_hits"`
	Results    []RankedCandidate `json:"results"`
	Verdict    ConfidenceVerdict `json:"confidence"`
	UsedRerank bool              `json:"used_rerank"`
	TookMillis int64             `json:"took_ms"`
}

// SearchLogEntry is a write-only audit record of one completed search.
// It is never read back by the pipeline.
type SearchLogEntry struct {
	Query      string
	TotalHits  int
	TopScore   float64
	UsedRerank bool
	TookMillis int64
}
