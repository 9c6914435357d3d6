package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/sitegen-backend/config"
)

// FromConfig returns a Redis-backed publisher when REDIS_ADDR is set and a
// Noop publisher otherwise. The returned close func is always non-nil.
func FromConfig(ctx context.Context, cfg config.RedisConfig) (Publisher, func() error, error) {
	if cfg.Addr == "" {
		return Noop{}, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return NewRedisPublisher(client), client.Close, nil
}
