package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/underbudget/backend/internal/config"
	"go.uber.org/zap"
)

// InitRedis connects to Redis. Unlike a cache, the token ledger cannot run
// degraded, so a failed ping is returned to the caller.
func InitRedis(ctx context.Context, cfg config.RedisConfig, l *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	l.Info("redis connection established", zap.String("addr", cfg.Addr()))
	return rdb, nil
}
