// Package redistest 提供内存版 AsyncCacheService，供不连接 Redis 的测试使用
package redistest

import (
	"context"
	"sort"
	"sync"
	"time"

	myredis "live_chat_server/internal/dao/redis"
)

type token struct {
	id  string
	ttl time.Duration
}

// Memory 线程安全，TTL 只记录不过期，SubmitTask 同步执行
type Memory struct {
	mu     sync.Mutex
	tokens map[string]token
	online map[string]struct{}
}

func New() *Memory {
	return &Memory{
		tokens: make(map[string]token),
		online: make(map[string]struct{}),
	}
}

func (m *Memory) SaveTokenID(_ context.Context, userId, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userId] = token{id: tokenID, ttl: ttl}
	return nil
}

func (m *Memory) TokenID(_ context.Context, userId string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userId].id, nil
}

// TokenTTL 返回保存 Token ID 时给出的过期时间
func (m *Memory) TokenTTL(userId string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userId].ttl
}

func (m *Memory) MarkOnline(_ context.Context, userId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[userId] = struct{}{}
	return nil
}

func (m *Memory) MarkOffline(_ context.Context, userId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.online, userId)
	return nil
}

// OnlineUserIds 排序后返回，方便断言
func (m *Memory) OnlineUserIds(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.online))
	for id := range m.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) ClearOnline(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = make(map[string]struct{})
	return nil
}

func (m *Memory) SubmitTask(_ string, action func()) {
	action()
}

var _ myredis.AsyncCacheService = (*Memory)(nil)
