package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/woneiros/travel-planner/internal/config"
)

const (
	keyNamespace = "travel-planner"
	dialTimeout  = 5 * time.Second
)

// Client is the shared redis connection for the transcript cache and the
// rate limiter. Every key it hands out lives under one namespace.
type Client struct {
	rdb *redis.Client
}

// NewClient dials redis and fails fast when the server is unreachable
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr(), err)
	}

	return &Client{rdb: rdb}, nil
}

func key(parts ...string) string {
	return keyNamespace + ":" + strings.Join(parts, ":")
}

// Ping satisfies the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
