package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache 缓存序列化后的排行榜
type LeaderboardCache interface {
	Get(ctx context.Context, period string) ([]byte, bool, error)
	Set(ctx context.Context, period string, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, periods ...string) error
}

const leaderboardKeyPrefix = "leaderboard:"

type RedisLeaderboardCache struct {
	client *redis.Client
}

func NewRedisLeaderboardCache(client *redis.Client) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client}
}

func leaderboardKey(period string) string {
	return leaderboardKeyPrefix + period
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, period string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, leaderboardKey(period)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, period string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, leaderboardKey(period), data, ttl).Err()
}

func (c *RedisLeaderboardCache) Invalidate(ctx context.Context, periods ...string) error {
	if len(periods) == 0 {
		return nil
	}
	keys := make([]string, 0, len(periods))
	for _, p := range periods {
		keys = append(keys, leaderboardKey(p))
	}
	return c.client.Del(ctx, keys...).Err()
}

// NoopLeaderboardCache 未启用 Redis 时每次都回源
type NoopLeaderboardCache struct{}

func (NoopLeaderboardCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopLeaderboardCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopLeaderboardCache) Invalidate(context.Context, ...string) error {
	return nil
}
