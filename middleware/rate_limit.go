package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller. Buckets idle for longer than
// ttl are dropped on the next sweep.
type RateLimiter struct {
	callers   map[string]*limiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func NewRateLimiter(r rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		callers:   make(map[string]*limiterEntry),
		rate:      r,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
	}
}

// Allow reports whether caller may make a request now.
func (rl *RateLimiter) Allow(caller string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.ttl {
		for key, e := range rl.callers {
			if now.Sub(e.lastSeen) > rl.ttl {
				delete(rl.callers, key)
			}
		}
		rl.lastSweep = now
	}

	entry, ok := rl.callers[caller]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.callers[caller] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

// RateLimit throttles callers by token subject, or by client IP when the
// request carries none. Place it after BearerAuth.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString(SubjectKey)
		if caller == "" {
			caller = c.ClientIP()
		}
		if !rl.Allow(caller) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
