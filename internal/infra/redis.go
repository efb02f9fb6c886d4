package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// NewRedisClient configures a Redis client and verifies connectivity. Command
// timeouts are capped so a slow Redis fails a frame action instead of hanging it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opt.ReadTimeout == 0 || opt.ReadTimeout > redisOpTimeout {
		opt.ReadTimeout = redisOpTimeout
	}
	if opt.WriteTimeout == 0 || opt.WriteTimeout > redisOpTimeout {
		opt.WriteTimeout = redisOpTimeout
	}
	opt.ClientName = "lovecaster"

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
