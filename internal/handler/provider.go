// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"live_chat_server/internal/config"
	"live_chat_server/internal/service"
	"live_chat_server/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	User    *UserHandler
	Auth    *AuthHandler
	Friend  *FriendHandler
	Group   *GroupHandler
	Message *MessageHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合实例
// manager: 实时连接生命周期管理器
func NewHandlers(svc *service.Services, manager *chat.Manager, wsCfg config.WebSocketConfig) *Handlers {
	return &Handlers{
		User:    NewUserHandler(svc.User),
		Auth:    NewAuthHandler(svc.Auth),
		Friend:  NewFriendHandler(svc.Friend),
		Group:   NewGroupHandler(svc.Group, svc.Message),
		Message: NewMessageHandler(svc.Message),
		Ws:      NewWsHandler(manager, wsCfg),
	}
}
