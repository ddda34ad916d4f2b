// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"live_chat_server/internal/dao/mysql/repository"
	myredis "live_chat_server/internal/dao/redis"
	"live_chat_server/internal/dto/event"
	"live_chat_server/internal/service/auth"
	"live_chat_server/internal/service/friend"
	"live_chat_server/internal/service/group"
	"live_chat_server/internal/service/message"
	"live_chat_server/internal/service/signal"
	"live_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层和实时分发表共用同一组实例
type Services struct {
	User    UserService
	Auth    AuthService
	Group   GroupService
	Friend  FriendService
	Message MessageService
	Signal  SignalService
}

// NewServices 创建并注入所有 Service 实例
// repos: Repository 层聚合实例
// cache: Token 与在线镜像所在的缓存
// notifier: 实时事件出口，通常是消息代理
func NewServices(repos *repository.Repositories, cache myredis.CacheService, notifier event.Notifier) *Services {
	return &Services{
		User:    user.NewUserService(repos, cache),
		Auth:    auth.NewAuthService(cache),
		Group:   group.NewGroupService(repos),
		Friend:  friend.NewFriendService(repos, notifier),
		Message: message.NewMessageService(repos, notifier),
		Signal:  signal.NewSignalService(notifier),
	}
}
