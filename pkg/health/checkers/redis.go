package checkers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type statusPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type RedisChecker struct {
	client statusPinger
}

func NewRedisChecker(client statusPinger) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}
