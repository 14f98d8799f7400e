// Package redis provides the redis-backed infrastructure: connection
// bootstrap, the per-order distributed lock and the payment event stream.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/commercekit/checkout/internal/infrastructure/config"
	"github.com/commercekit/checkout/pkg/retry"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to redis, retrying the initial ping with backoff so
// the service survives a slow-starting dependency.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr(), err)
	}

	return client, nil
}
