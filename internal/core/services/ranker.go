package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// Ranking weights. Matching more strategies dominates raw backend scores;
// confidence is bounded away from both 0 and 100 - a single-strategy,
// low-score hit still surfaces at 60, and no lexical result is ever
// presented as certain.
const (
	strategyRankWeight    = 10
	confidencePerStrategy = 15
	confidencePerScore    = 10
	confidenceFloor       = 60
	confidenceCeiling     = 95
)

func combinedRank(c *domain.Candidate) float64 {
	return float64(len(c.Strategies))*strategyRankWeight + c.MaxScore + c.TotalScore
}

func confidence(c *domain.Candidate) int {
	v := float64(len(c.Strategies))*confidencePerStrategy + c.MaxScore*confidencePerScore
	return int(math.Min(confidenceCeiling, math.Max(confidenceFloor, v)))
}

// Rank orders candidates by combined rank descending, breaking ties by
// document ID so identical input always yields identical output, and
// truncates to maxResults. Each candidate's effective score starts as its
// backend MaxScore; the re-rank gate may later replace it.
func Rank(candidates map[string]*domain.Candidate, maxResults int) []domain.RankedCandidate {
	ranked := make([]domain.RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, domain.RankedCandidate{
			Candidate:     *c,
			CombinedRank:  combinedRank(c),
			Confidence:    confidence(c),
			Score:         c.MaxScore,
			OriginalScore: c.MaxScore,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CombinedRank != ranked[j].CombinedRank {
			return ranked[i].CombinedRank > ranked[j].CombinedRank
		}
		return ranked[i].ID < ranked[j].ID
	})

	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Verdict computes the result-set confidence verdict against the gate
// thresholds. The gap ratio is +Inf for a lone scored candidate and 0 when
// there is nothing scored at all.
func Verdict(ranked []domain.RankedCandidate, confidenceThreshold, scoreGapRatio float64) domain.ConfidenceVerdict {
	if len(ranked) == 0 {
		return domain.ConfidenceVerdict{Reason: "no candidates"}
	}

	top := ranked[0].Score
	var second float64
	if len(ranked) > 1 {
		second = ranked[1].Score
	}

	var ratio float64
	switch {
	case second > 0:
		ratio = top / second
	case top > 0:
		ratio = math.Inf(1)
	}

	high := top > confidenceThreshold && ratio > scoreGapRatio
	reason := "low confidence - semantic re-ranking required"
	if high {
		reason = "high confidence"
	}

	return domain.ConfidenceVerdict{
		TopScore:         top,
		SecondScore:      second,
		GapRatio:         ratio,
		IsHighConfidence: high,
		Reason:           reason,
	}
}
