package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleTTL is how long an unused client bucket is kept.
const idleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns per-client-IP rate limiting middleware using token buckets.
//
// Token bucket algorithm: each client gets a bucket that fills at `rps`
// tokens/sec up to `burst` tokens. Each request consumes one token. If the
// bucket is empty, the request is rejected with 429.
//
// message builds the error text for a request, so it can be localized.
func RateLimit(rps float64, burst int, message func(c *gin.Context) string) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*clientLimiter)
	lastSweep := time.Now()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		// Sweep idle buckets so the map does not grow with every client seen.
		if now.Sub(lastSweep) > idleTTL {
			for k, cl := range limiters {
				if now.Sub(cl.lastSeen) > idleTTL {
					delete(limiters, k)
				}
			}
			lastSweep = now
		}
		cl, exists := limiters[ip]
		if !exists {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			limiters[ip] = cl
		}
		cl.lastSeen = now
		mu.Unlock()

		if !cl.limiter.Allow() {
			msg := "rate limit exceeded"
			if message != nil {
				msg = message(c)
			}
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msg})
			return
		}

		c.Next()
	}
}
