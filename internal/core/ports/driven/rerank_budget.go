package driven

import "context"

// RerankBudget bounds how often the re-rank collaborator may be invoked.
// A nil budget means unlimited. Budget errors fail open: the lexical
// ranking is always available as a fallback, so an unreachable budget
// store must not block searches.
type RerankBudget interface {
	// Allow reports whether one more re-rank invocation is within budget
	Allow(ctx context.Context) (bool, error)
}
