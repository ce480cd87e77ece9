package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// AttemptLimiter sliding window counter of attempts per key
type AttemptLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
}

// NewAttemptLimiter allows max attempts per key within window
func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		max:    max,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
// Rejected attempts are not recorded.
func (l *AttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.recent(l.hits[key], now)
	if len(hits) >= l.max {
		l.hits[key] = hits
		return false
	}
	l.hits[key] = append(hits, now)
	return true
}

// Prune forgets keys without attempts in the current window.
func (l *AttemptLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, hits := range l.hits {
		if hits = l.recent(hits, now); len(hits) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = hits
		}
	}
}

func (l *AttemptLimiter) recent(hits []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Middleware rejects requests over the limit, keyed by client IP, with 429.
func (l *AttemptLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "too many unlock attempts, try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UnlockRateLimit password attempt limit for the unlock route, pruned once a minute
func UnlockRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	l := NewAttemptLimiter(maxAttempts, window)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			l.Prune()
		}
	}()
	return l.Middleware()
}
