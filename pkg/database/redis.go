package database

import (
	"context"
	"fmt"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis 连接失败时关闭客户端并返回错误，由调用方决定是否降级
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr(), err)
	}

	logger.Log.Info("Redis connection established",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB))
	return rdb, nil
}
