package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds the connection parameters for NewRedisClient.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	MaxRetries    int
	RetryInterval time.Duration
}

// NewRedisClient connects to Redis, retrying the initial ping.
func NewRedisClient(ctx context.Context, cfg RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, ctx.Err()
			case <-time.After(cfg.RetryInterval):
			}
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			log.Info("connected to redis", zap.String("addr", cfg.Addr))
			return client, nil
		}
		log.Warn("redis ping failed", zap.Int("attempt", attempt+1), zap.Error(lastErr))
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}
