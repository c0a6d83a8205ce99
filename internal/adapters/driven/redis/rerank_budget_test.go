package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestRerankBudget_AllowsWithinLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	budget := NewRerankBudget(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := budget.Allow(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Errorf("call %d should be within budget", i+1)
		}
	}
}

func TestRerankBudget_DeniesOverLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	budget := NewRerankBudget(client, 2, time.Minute)
	ctx := context.Background()

	budget.Allow(ctx)
	budget.Allow(ctx)

	allowed, err := budget.Allow(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("third call should exceed a budget of 2")
	}
}

func TestRerankBudget_WindowExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	budget := NewRerankBudget(client, 1, time.Minute)
	ctx := context.Background()

	key := budget.currentKey()
	budget.Allow(ctx)
	if allowed, _ := budget.Allow(ctx); allowed {
		t.Fatal("budget of 1 should be spent")
	}

	// the window key carries a TTL so a stuck counter cannot starve re-ranking
	mr.FastForward(2 * time.Minute)

	if mr.Exists(key) {
		t.Error("expired window key should be gone")
	}
}

func TestRerankBudget_ErrorWhenRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	budget := NewRerankBudget(client, 5, time.Minute)

	mr.Close()

	if _, err := budget.Allow(context.Background()); err == nil {
		t.Error("expected error when redis is unreachable")
	}
}
