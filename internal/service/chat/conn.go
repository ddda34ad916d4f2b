// Package chat 实现实时消息核心
// 在线目录、房间路由、连接生命周期与入站事件分发都在本包内
package chat

// Conn 一条实时连接的句柄
// 在线目录与房间路由只通过该接口操作连接，测试中可替换为内存实现
type Conn interface {
	// ID 连接唯一标识，同一用户的新旧连接 ID 不同
	ID() string
	// UserID 连接所属用户
	UserID() string
	// Send 非阻塞写入出站缓冲，缓冲已满或连接已关闭时返回 false
	Send(frame []byte) bool
	// Close 关闭连接，可重复调用
	Close() error
}
