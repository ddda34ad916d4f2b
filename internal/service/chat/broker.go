package chat

import (
	"context"

	"live_chat_server/internal/dto/event"
)

// MessageBroker 出站事件的投递通道
// 支持两种实现：ChannelBroker (单机直接投递), KafkaBroker (经 Kafka 扇出到所有节点)
type MessageBroker interface {
	event.Notifier
	// Start 启动消费循环，阻塞直到 ctx 结束
	Start(ctx context.Context) error
	// Close 释放资源
	Close() error
}

// ChannelBroker 单机模式，直接交给本机房间路由
type ChannelBroker struct {
	*RoomRouter
}

// NewChannelBroker 创建单机投递通道
func NewChannelBroker(router *RoomRouter) *ChannelBroker {
	return &ChannelBroker{RoomRouter: router}
}

// Start 单机模式没有消费循环
func (b *ChannelBroker) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (b *ChannelBroker) Close() error { return nil }

var _ MessageBroker = (*ChannelBroker)(nil)
