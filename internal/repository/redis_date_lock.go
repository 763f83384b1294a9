package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/internal/calendar"
	"github.com/leavedesk/service-booking/pkg/domain"
)

const (
	dateLockPrefix   = "leave:lock:date:"
	dateLockTTL      = 10 * time.Second
	dateLockWait     = 3 * time.Second
	dateLockInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisDateLock serialises booking writes per civil date across instances.
type RedisDateLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewRedisDateLock creates a RedisDateLock.
func NewRedisDateLock(client redis.UniversalClient, logger *zap.Logger) *RedisDateLock {
	return &RedisDateLock{client: client, ttl: dateLockTTL, wait: dateLockWait, logger: logger}
}

// Acquire locks every date, in ascending order so two callers with
// overlapping ranges cannot deadlock. The returned func releases all of them.
func (l *RedisDateLock) Acquire(ctx context.Context, dates []calendar.Date) (func(), error) {
	sorted := append([]calendar.Date(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	token := uuid.NewString()
	held := make([]string, 0, len(sorted))
	release := func() { l.release(held, token) }

	for _, d := range sorted {
		key := dateLockPrefix + d.String()
		if err := l.lockKey(ctx, key, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *RedisDateLock) lockKey(ctx context.Context, key, token string) error {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(dateLockInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("failed to acquire date lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return domain.NewConflictError("another booking for these dates is being processed, please try again")
		case <-ticker.C:
		}
	}
}

func (l *RedisDateLock) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, key := range keys {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("failed to release date lock", zap.String("key", key), zap.Error(err))
		}
	}
}

// NoopDateLock is used when Redis is not configured.
type NoopDateLock struct{}

// Acquire always succeeds immediately.
func (NoopDateLock) Acquire(context.Context, []calendar.Date) (func(), error) {
	return func() {}, nil
}
