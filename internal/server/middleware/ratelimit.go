// file: internal/server/middleware/ratelimit.go
// version: 2.0.0
// guid: 1331705a-85cb-4158-92f5-5ce203d8a0e7

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	clientIdleTTL = 15 * time.Minute
	sweepInterval = time.Minute
)

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles requests per client IP with a token bucket each.
// Idle clients are swept periodically so the map stays bounded by the set of
// recently active IPs.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	perSecond rate.Limit
	burst     int
	lastSweep time.Time
}

func NewIPRateLimiter(requestsPerMinute int, burst int) *IPRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		clients:   make(map[string]*client),
		perSecond: rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// allow reports whether ip may proceed, creating its bucket on first sight.
func (r *IPRateLimiter) allow(ip string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) > sweepInterval {
		for key, cl := range r.clients {
			if now.Sub(cl.lastSeen) > clientIdleTTL {
				delete(r.clients, key)
			}
		}
		r.lastSweep = now
	}

	cl, ok := r.clients[ip]
	if !ok {
		cl = &client{bucket: rate.NewLimiter(r.perSecond, r.burst)}
		r.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.bucket.Allow()
}

// Middleware returns a Gin middleware that enforces the configured limit.
func (r *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !r.allow(ip) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate limit exceeded",
				"code":   "RATE_LIMITED",
				"status": http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
