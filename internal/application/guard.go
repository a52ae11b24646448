package application

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FinalizeGuard makes finalization first-wins. Webhook redeliveries and
// double-taps race to SETNX the same key; only the winner submits.
type FinalizeGuard struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewFinalizeGuard(rdb *redis.Client, ttl time.Duration) *FinalizeGuard {
	if rdb == nil {
		panic("application: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &FinalizeGuard{redis: rdb, ttl: ttl}
}

// Acquire claims the finalize token for a user. Returns false when
// another finalization already claimed it.
func (g *FinalizeGuard) Acquire(ctx context.Context, userID string) (bool, error) {
	ok, err := g.redis.SetNX(ctx, finalizeKey(userID), time.Now().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("application: failed to acquire finalize token: %w", err)
	}
	return ok, nil
}

// Release frees the token so the user can apply again, e.g. after a
// failed finalization that should be retryable.
func (g *FinalizeGuard) Release(ctx context.Context, userID string) error {
	if err := g.redis.Del(ctx, finalizeKey(userID)).Err(); err != nil {
		return fmt.Errorf("application: failed to release finalize token: %w", err)
	}
	return nil
}

func finalizeKey(userID string) string {
	return fmt.Sprintf("finalize_token:%s", userID)
}
