package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playtavola/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces a fixed-window per-IP bucket in Redis. With no Redis
// client configured the limiter is a pass-through.
func RateLimit(rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	if rdb == nil || cfg.RateLimitBucket <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	window := time.Duration(cfg.RateLimitWindow) * time.Second
	return func(c *gin.Context) {
		ctx := context.Background()
		key := fmt.Sprintf("rate:%s", c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis down must not take the API with it
			log.Printf("[RATE] Redis error, allowing request: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}
		if count > int64(cfg.RateLimitBucket) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
