// Package redis 定义缓存服务接口
// Service 层依赖这些接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// TokenStore 记录每个用户最近一次登录签发的 Refresh Token ID
// 新登录覆盖旧值，旧设备的 Refresh Token 随之失效
type TokenStore interface {
	SaveTokenID(ctx context.Context, userId, tokenID string, ttl time.Duration) error
	// TokenID 无记录时返回空字符串和 nil
	TokenID(ctx context.Context, userId string) (string, error)
}

// PresenceMirror 在线用户集合的镜像
// 权威状态在进程内的 Presence Directory，这里只供在线列表查询
type PresenceMirror interface {
	MarkOnline(ctx context.Context, userId string) error
	MarkOffline(ctx context.Context, userId string) error
	OnlineUserIds(ctx context.Context) ([]string, error)
	// ClearOnline 启动对账时清空整个集合
	ClearOnline(ctx context.Context) error
}

// CacheService 缓存服务接口
type CacheService interface {
	TokenStore
	PresenceMirror
}

// AsyncCacheService 在 CacheService 之上提供异步任务提交
// 连接协程通过它更新镜像而不等待 Redis 往返
type AsyncCacheService interface {
	CacheService
	// SubmitTask 同一 key 的任务按提交顺序执行，不同 key 之间不保证顺序
	SubmitTask(key string, action func())
}
