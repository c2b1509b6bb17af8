package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientWindow struct {
	start time.Time
	count int
}

var (
	rlMu    sync.Mutex
	clients = make(map[string]*clientWindow)
)

// SimpleRateLimit is an in-memory fixed-window per-IP limiter. Used on the
// endpoints that must keep working when Redis is down, like the provider
// webhook.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rlMu.Lock()
		cw, ok := clients[ip]
		if !ok || now.Sub(cw.start) > window {
			clients[ip] = &clientWindow{start: now, count: 1}
			if len(clients) > 10000 {
				evictStale(now, window)
			}
			rlMu.Unlock()
			c.Next()
			return
		}

		cw.count++
		blocked := cw.count > maxRequests
		rlMu.Unlock()

		if blocked {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// evictStale drops expired windows. Caller holds rlMu.
func evictStale(now time.Time, window time.Duration) {
	for ip, cw := range clients {
		if now.Sub(cw.start) > window {
			delete(clients, ip)
		}
	}
}
