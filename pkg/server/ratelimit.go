package server

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/maypok86/otter/v2"
	"golang.org/x/time/rate"
)

// idleLimiterTTL drops a client's limiter after this long without requests.
const idleLimiterTTL = 10 * time.Minute

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	limiters *otter.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newRateLimiter(perMinute, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: otter.Must(&otter.Options[string, *rate.Limiter]{
			MaximumSize:      50_000,
			ExpiryCalculator: otter.ExpiryAccessing[string, *rate.Limiter](idleLimiterTTL),
		}),
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
	}
}

func (rl *rateLimiter) limiterFor(ip string) *rate.Limiter {
	if l, ok := rl.limiters.GetIfPresent(ip); ok {
		return l
	}
	l, _ := rl.limiters.SetIfAbsent(ip, rate.NewLimiter(rl.limit, rl.burst))
	return l
}

func (rl *rateLimiter) allow(ip string) bool {
	return rl.limiterFor(ip).Allow()
}

func (rl *rateLimiter) middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.allow(ip) {
				writeRateLimitResponse(w, rl.limit)
				logger.Warn("rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitResponse answers 429 with a Retry-After of one token interval.
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(limit)))
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, retry after "+strconv.Itoa(retryAfter)+"s")
}
