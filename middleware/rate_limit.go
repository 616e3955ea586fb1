package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kokonnect/konnect-back-sub000/pkg/logger"
)

// RateLimiter counts requests per client IP inside a fixed window. Every
// analysis upload burns model quota, so the limiter sits in front of the
// whole API rather than metering per route.
type RateLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart time.Time
	limit       int
	window      time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:      make(map[string]int),
		windowStart: time.Now(),
		limit:       limit,
		window:      window,
	}
}

// Allow records one request for the client and reports whether it fits
// inside the current window, plus how long until the window resets.
func (l *RateLimiter) Allow(clientIP string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elapsed := time.Since(l.windowStart); elapsed > l.window {
		l.counts = make(map[string]int)
		l.windowStart = time.Now()
	}

	if l.counts[clientIP] >= l.limit {
		return false, l.window - time.Since(l.windowStart)
	}
	l.counts[clientIP]++
	return true, 0
}

// RateLimit rejects clients that exceed limit requests per window with a
// 429 and a Retry-After hint.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		ok, retryAfter := limiter.Allow(clientIP)
		if !ok {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client_ip", clientIP)

			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many analysis requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
