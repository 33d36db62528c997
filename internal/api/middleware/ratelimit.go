package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/woneiros/travel-planner/internal/api/response"
)

// Limiter decides whether the caller identified by key may proceed.
// Returns (allowed, remaining, resetTime, error).
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// MemoryRateLimiter is a per-process limiter used when redis is disabled
type MemoryRateLimiter struct {
	limiter *limiter.Limiter
}

// NewMemoryRateLimiter allows requestsPerMinute+burst requests per minute per key
func NewMemoryRateLimiter(requestsPerMinute, burst int) (*MemoryRateLimiter, error) {
	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-M", requestsPerMinute+burst))
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit: %w", err)
	}
	return &MemoryRateLimiter{limiter: limiter.New(memory.NewStore(), rate)}, nil
}

func (m *MemoryRateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	lctx, err := m.limiter.Get(ctx, key)
	if err != nil {
		return false, 0, time.Time{}, err
	}
	return !lctx.Reached, int(lctx.Remaining), time.Unix(lctx.Reset, 0), nil
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter Limiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting per user, or per client IP for anonymous callers
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + clientIP(r)
		if userID, ok := GetUserID(r.Context()); ok {
			key = "user:" + userID
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), key)
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
