package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/restaurant-discovery/pkg/logger"
)

// RateLimiter implements a sliding-window limit per caller using Redis
type RateLimiter struct {
	redis       *redis.Client
	scope       string
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimiter creates a new rate limiter. Each scope keeps its own
// counters. A nil client disables limiting.
func NewRateLimiter(redisClient *redis.Client, scope string, maxRequests int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		redis:       redisClient,
		scope:       scope,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Limit wraps a handler. Authenticated callers are limited by user id and
// anonymous ones by client address. Redis failures let the request through.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rl == nil || rl.redis == nil || rl.maxRequests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		identifier := "ip:" + clientIP(r)
		if userID, ok := UserID(r.Context()); ok {
			identifier = fmt.Sprintf("user:%d", userID)
		}

		allowed, remaining, resetTime, err := rl.checkLimit(r.Context(), identifier)
		if err != nil {
			logger.Error(r.Context()).
				Err(err).
				Str("identifier", identifier).
				Msg("Rate limiter error")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(math.Ceil(resetTime.Sub(rl.now()).Seconds()))
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Str("scope", rl.scope).
				Int("limit", rl.maxRequests).
				Msg("Rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			RespondError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Try again in %ds", retryAfter))
			return
		}

		next.ServeHTTP(w, r)
	}
}

// checkLimit records the request and reports whether it fits in the window
func (rl *RateLimiter) checkLimit(ctx context.Context, identifier string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", rl.scope, identifier)
	now := rl.now()
	windowStart := now.Add(-rl.window)

	pipe := rl.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, key, rl.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := countCmd.Val()
	remaining := rl.maxRequests - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < int64(rl.maxRequests), remaining, now.Add(rl.window), nil
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
