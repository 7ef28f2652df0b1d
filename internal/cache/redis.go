package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "summary:"
	pingTimeout = 5 * time.Second
)

// Redis shares summaries between bot instances.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	summary, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get summary: %w", err)
	}

	return summary, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, summary string, ttl time.Duration) error {
	if key == "" || summary == "" || ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, keyPrefix+key, summary, ttl).Err(); err != nil {
		return fmt.Errorf("set summary: %w", err)
	}

	return nil
}

func (c *Redis) Close() error {
	return c.client.Close()
}
