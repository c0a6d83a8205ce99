package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RerankBudget = (*RerankBudget)(nil)

const budgetKeyPrefix = "skumatch:rerank_budget:"

// RerankBudget implements driven.RerankBudget as a fixed-window counter in
// Redis, shared across instances. Each window is one key with a TTL; INCR is
// atomic, so concurrent instances never overspend by more than in-flight
// requests.
type RerankBudget struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRerankBudget creates a budget allowing limit re-rank calls per window.
func NewRerankBudget(client *redis.Client, limit int, window time.Duration) *RerankBudget {
	if window <= 0 {
		window = time.Minute
	}
	return &RerankBudget{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow consumes one unit from the current window and reports whether the
// call is within budget.
func (b *RerankBudget) Allow(ctx context.Context) (bool, error) {
	key := b.currentKey()

	count, err := b.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rerank budget incr: %w", err)
	}
	if count == 1 {
		// first consumer of the window sets its expiry
		if err := b.client.Expire(ctx, key, b.window).Err(); err != nil {
			return false, fmt.Errorf("rerank budget expire: %w", err)
		}
	}

	return count <= int64(b.limit), nil
}

func (b *RerankBudget) currentKey() string {
	windowStart := time.Now().Unix() / int64(b.window.Seconds())
	return fmt.Sprintf("%s%d", budgetKeyPrefix, windowStart)
}

// Ping checks if the Redis backend is healthy.
func (b *RerankBudget) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
