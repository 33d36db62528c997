package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// RateLimiter counts API calls per caller in fixed one-minute windows.
// Counters live in redis so every replica sees the same budget.
type RateLimiter struct {
	client *Client
	limit  int64
	now    func() time.Time
}

// NewRateLimiter allows requestsPerMinute+burst calls per window
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
		now:    time.Now,
	}
}

func (r *RateLimiter) windowKey(caller string, start time.Time) string {
	return key("ratelimit", caller, strconv.FormatInt(start.Unix(), 10))
}

// Allow records one call for caller and reports whether it fits the budget,
// how many calls remain, and when the window resets.
func (r *RateLimiter) Allow(ctx context.Context, caller string) (bool, int, time.Time, error) {
	start := r.now().Truncate(rateLimitWindow)
	k := r.windowKey(caller, start)

	var count *redis.IntCmd
	_, err := r.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, rateLimitWindow)
		return nil
	})
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit check for %s: %w", caller, err)
	}

	used := count.Val()
	remaining := max(r.limit-used, 0)
	return used <= r.limit, int(remaining), start.Add(rateLimitWindow), nil
}

// Reset clears the caller's counter for the current window
func (r *RateLimiter) Reset(ctx context.Context, caller string) error {
	start := r.now().Truncate(rateLimitWindow)
	return r.client.rdb.Del(ctx, r.windowKey(caller, start)).Err()
}
