package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"raspadinha_backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// PurchaseRateLimit limits purchases per user (not per IP) using Redis.
// Uses the JWT user id from context, so the JWT middleware must run first.
func PurchaseRateLimit(maxPurchases int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, ok := userIDVal.(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		key := "purchase_rl:" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxPurchases))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxPurchases)-val), 10))

		if val > int64(maxPurchases) {
			metrics.RLBlocked.WithLabelValues("purchase:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "purchase rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		metrics.RLRequests.WithLabelValues("purchase:" + c.FullPath()).Inc()
		c.Next()
	}
}

func max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
