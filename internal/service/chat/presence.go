package chat

import "sync"

// PresenceDirectory 用户 -> 当前连接 的进程内目录
// 每个进程构造一次，通过参数注入到需要它的组件
// 同一用户后到的连接覆盖先前的条目
type PresenceDirectory struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewPresenceDirectory 创建空目录
func NewPresenceDirectory() *PresenceDirectory {
	return &PresenceDirectory{conns: make(map[string]Conn)}
}

// Register 记录 userId 的当前连接，返回被覆盖的旧连接 (没有则为 nil)
func (p *PresenceDirectory) Register(userId string, conn Conn) Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.conns[userId]
	p.conns[userId] = conn
	return prev
}

// Lookup 查找用户当前连接，不在线返回 false
func (p *PresenceDirectory) Lookup(userId string) (Conn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.conns[userId]
	return conn, ok
}

// Unregister 只有当目录中记录的正是 conn 时才删除
// 旧连接迟到的断开不会把新连接踢下线，返回值表示是否真正删除
func (p *PresenceDirectory) Unregister(userId string, conn Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.conns[userId]
	if !ok || cur.ID() != conn.ID() {
		return false
	}
	delete(p.conns, userId)
	return true
}

// OnlineUserIds 当前在线的用户 ID，顺序不固定
func (p *PresenceDirectory) OnlineUserIds() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.conns))
	for id := range p.conns {
		ids = append(ids, id)
	}
	return ids
}

// Count 在线人数
func (p *PresenceDirectory) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}
