package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter tracks a per-client token bucket and when it was last used
// so idle entries can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	evictAfter    = 10 * time.Minute
	sweepInterval = time.Minute
)

// RateLimit returns a Gin middleware that limits each client IP to rps
// requests per second with the given burst. Entries idle for more than ten
// minutes are swept inline, at most once a minute, so the middleware owns
// no background goroutine or ticker.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)
	lastSweep := time.Now()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		now := time.Now()
		if now.Sub(lastSweep) >= sweepInterval {
			for addr, entry := range clients {
				if now.Sub(entry.lastSeen) > evictAfter {
					delete(clients, addr)
				}
			}
			lastSweep = now
		}

		entry, ok := clients[ip]
		if !ok {
			entry = &clientLimiter{limiter: rate.NewLimiter(rps, burst)}
			clients[ip] = entry
		}
		entry.lastSeen = now
		allowed := entry.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many requests",
				},
			})
			return
		}

		c.Next()
	}
}
