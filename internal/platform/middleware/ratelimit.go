package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// bucket is a token bucket. Tokens refill continuously at rate per second
// up to burst; each request spends one token.
type bucket struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

func (b *bucket) take(now time.Time, rate, burst float64) bool {
	b.tokens = math.Min(burst, b.tokens+now.Sub(b.last).Seconds()*rate)
	b.last = now
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// limiter keeps one bucket per client key and evicts buckets idle longer
// than staleAfter so the map does not grow without bound.
type limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	cfg        RateLimitConfig
	lastSweep  time.Time
	staleAfter time.Duration
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		buckets:    make(map[string]*bucket),
		cfg:        cfg,
		lastSweep:  time.Now(),
		staleAfter: 10 * time.Minute,
	}
}

func (l *limiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.staleAfter {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.staleAfter {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.BurstSize), last: now}
		l.buckets[key] = b
	}
	return b.take(now, l.cfg.RequestsPerSecond, float64(l.cfg.BurstSize))
}

func (l *limiter) retryAfter() int {
	if l.cfg.RequestsPerSecond <= 0 {
		return 1
	}
	return int(1/l.cfg.RequestsPerSecond) + 1
}

// RateLimit limits requests per client IP using a token bucket.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	lim := newLimiter(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			if !lim.allow(c.RealIP()) {
				h.Set("Retry-After", strconv.Itoa(lim.retryAfter()))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
