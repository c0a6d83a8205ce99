package services

import (
	"github.com/custodia-labs/skumatch-core/internal/core/domain"
)

// Aggregate merges per-strategy hits into a deduplicated candidate map keyed
// by document ID. The first hit for a document seeds its source fields;
// subsequent hits only update the score accumulators and the strategy set.
// Documents unseen by every strategy are simply absent - there is no
// zero-score entry. Failed strategies contribute nothing.
func Aggregate(results []domain.StrategyResult) map[string]*domain.Candidate {
	candidates := make(map[string]*domain.Candidate)

	for _, result := range results {
		if !result.Succeeded {
			continue
		}
		for _, hit := range result.Hits {
			candidate, ok := candidates[hit.ID]
			if !ok {
				candidate = &domain.Candidate{
					ID:     hit.ID,
					Source: hit.Source,
				}
				candidates[hit.ID] = candidate
			}

			candidate.TotalScore += hit.Score
			if hit.Score > candidate.MaxScore {
				candidate.MaxScore = hit.Score
			}
			if !candidate.MatchedBy(result.Strategy) {
				candidate.Strategies = append(candidate.Strategies, result.Strategy)
			}
		}
	}

	return candidates
}
