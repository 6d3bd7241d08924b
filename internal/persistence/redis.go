package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
)

// Redis backs the outbound mail queue.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the mail queue client. An empty REDIS_ADDR disables the
// queue and returns nil; reachability is left to Ping so callers can fall back
// to direct delivery.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("redis disabled; mail is sent inline")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// QueueDepth returns the number of messages waiting on key.
func (r *Redis) QueueDepth(ctx context.Context, key string) (int64, error) {
	if r == nil || r.Client == nil {
		return 0, errors.New("redis client not configured")
	}
	return r.Client.LLen(ctx, key).Result()
}
