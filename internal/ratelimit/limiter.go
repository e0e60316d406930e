package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/serroba/shortly/internal/store"
)

const keyPrefix = "ratelimit:"

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	// RetryAfter is the time until the current window closes. Only set on
	// rejection.
	RetryAfter time.Duration
}

// FixedWindowLimiter counts requests per identity in fixed time buckets.
// The bucket discriminator is part of the key, so counters rotate by key
// change and are reaped by store TTL. Fixed windows admit bursts across a
// boundary (up to 2x the limit in a window-sized span); that imprecision is
// accepted in exchange for a single atomic store operation per check.
type FixedWindowLimiter struct {
	kv     store.KV
	limit  int64
	window time.Duration
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per window.
func NewFixedWindowLimiter(kv store.KV, limit int64, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		kv:     kv,
		limit:  limit,
		window: window,
	}
}

// Allow records a request for identity and decides whether to admit it.
// The increment happens before the comparison, so rejected requests still
// count against the window. Store failures propagate to the caller, which
// fails closed.
func (l *FixedWindowLimiter) Allow(ctx context.Context, identity string) (Decision, error) {
	now := time.Now()
	bucket := now.Truncate(l.window)
	key := fmt.Sprintf("%s%s:%d", keyPrefix, identity, bucket.Unix())

	count, err := l.kv.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{Limit: l.limit}

	if count > l.limit {
		decision.RetryAfter = bucket.Add(l.window).Sub(now)

		return decision, nil
	}

	decision.Allowed = true
	decision.Remaining = l.limit - count

	return decision, nil
}
