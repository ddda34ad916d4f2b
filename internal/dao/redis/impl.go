// Package redis 提供 CacheService 接口的 Redis 实现
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"live_chat_server/pkg/constants"
	"live_chat_server/pkg/errorx"
)

// RedisCache 基于 go-redis 的缓存
// 认证只看到 TokenStore，连接生命周期拿到带 SubmitTask 的 AsyncCacheService
type RedisCache struct {
	client *redis.Client
	queues []chan func() // 每个 worker 一条队列
}

// NewRedisCache 创建缓存实例并启动 workerNum 个后台 worker
// queueSize 为全部 worker 的队列总长度
func NewRedisCache(client *redis.Client, workerNum, queueSize int) *RedisCache {
	rc := &RedisCache{client: client}
	if workerNum > 0 {
		perWorker := queueSize / workerNum
		if perWorker < 1 {
			perWorker = 1
		}
		rc.queues = make([]chan func(), workerNum)
		for i := range rc.queues {
			rc.queues[i] = make(chan func(), perWorker)
			go rc.work(rc.queues[i])
		}
	}
	zap.L().Info("redis cache workers started", zap.Int("workers", workerNum), zap.Int("queue", queueSize))
	return rc
}

// work 消费一条队列，单个任务 panic 后换一个新协程继续消费同一队列
func (r *RedisCache) work(queue chan func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("redis cache task panic", zap.Any("recover", rec))
			go r.work(queue)
		}
	}()
	for task := range queue {
		if task != nil {
			task()
		}
	}
}

func tokenKey(userId string) string {
	return constants.REDIS_USER_TOKEN_KEY + userId
}

func (r *RedisCache) SaveTokenID(ctx context.Context, userId, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKey(userId), tokenID, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis save token id for %s", userId)
	}
	return nil
}

func (r *RedisCache) TokenID(ctx context.Context, userId string) (string, error) {
	id, err := r.client.Get(ctx, tokenKey(userId)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis load token id for %s", userId)
	}
	return id, nil
}

func (r *RedisCache) MarkOnline(ctx context.Context, userId string) error {
	if err := r.client.SAdd(ctx, constants.REDIS_ONLINE_USERS_KEY, userId).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis mark %s online", userId)
	}
	return nil
}

func (r *RedisCache) MarkOffline(ctx context.Context, userId string) error {
	if err := r.client.SRem(ctx, constants.REDIS_ONLINE_USERS_KEY, userId).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis mark %s offline", userId)
	}
	return nil
}

func (r *RedisCache) OnlineUserIds(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, constants.REDIS_ONLINE_USERS_KEY).Result()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "redis list online users")
	}
	return ids, nil
}

// ClearOnline 用 UNLINK 异步释放集合
func (r *RedisCache) ClearOnline(ctx context.Context) error {
	if err := r.client.Unlink(ctx, constants.REDIS_ONLINE_USERS_KEY).Err(); err != nil {
		return errorx.Wrap(err, errorx.CodeCacheError, "redis clear online users")
	}
	return nil
}

// SubmitTask 同一 key 的任务固定落在同一个 worker，按提交顺序执行
// 为什么：同一用户快速断开又重连时，SREM 不能跑到 SADD 之后
// 队列满时阻塞等待而不是就地执行，就地执行会越过队列里更早的任务
func (r *RedisCache) SubmitTask(key string, action func()) {
	if len(r.queues) == 0 {
		action()
		return
	}
	queue := r.queues[xxhash.Sum64String(key)%uint64(len(r.queues))]
	select {
	case queue <- action:
	default:
		zap.L().Warn("redis cache queue full, waiting", zap.String("key", key))
		queue <- action
	}
}

// Close 关闭连接，队列里尚未执行的任务随之失败
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ AsyncCacheService = (*RedisCache)(nil)
