package cache

import (
	"context"
	"time"

	"raspadinha_backend/internal/config"
	"raspadinha_backend/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Connect builds the shared redis client. Redis backs rate limiting and
// request deduplication only — both fail open, so a nil client keeps the
// server available.
func Connect(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, rate limiting and dedup run fail-open")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, running fail-open", "error", err)
		return nil
	}

	logger.Info("redis connected", "addr", cfg.RedisAddr)
	return client
}
