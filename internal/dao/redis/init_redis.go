// Package redis 提供 Redis 连接初始化
package redis

import (
	"context"
	"strconv"
	"time"

	"live_chat_server/internal/config"
	"live_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// Init 初始化 Redis 连接并返回带 Worker Pool 的缓存服务
func Init(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Db,
		// 最小空闲连接与 Worker 数量匹配
		PoolSize:     50,
		MinIdleConns: cfg.WorkerNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "redis ping")
	}

	return NewRedisCache(client, cfg.WorkerNum, cfg.BufferSize), nil
}
