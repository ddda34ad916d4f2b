// Package service 定义业务层接口
// Handler 层与实时分发层都只依赖这里的接口，具体实现在各子包
package service

import (
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/dto/respond"
)

// UserService 用户业务接口
type UserService interface {
	// Register 注册，邮箱或用户名重复返回 Conflict
	Register(req request.RegisterRequest) (*respond.UserRespond, error)
	// Login 邮箱密码登录，签发 Access/Refresh Token
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// GetProfile 获取用户资料
	GetProfile(userId string) (*respond.UserRespond, error)
	// SearchUsers 按用户名、邮箱、短码搜索，排除自己
	SearchUsers(userId, query string) ([]respond.UserBrief, error)
	// OnlineUsers 在线用户列表 (读取 Redis 在线镜像)
	OnlineUsers() ([]respond.UserBrief, error)
}

// AuthService 认证业务接口
type AuthService interface {
	// RefreshToken 用 Refresh Token 换取新的 Access Token
	RefreshToken(refreshToken string) (*respond.RefreshTokenRespond, error)
}

// MessageService 消息扇出引擎
// 所有写操作先持久化再投递
type MessageService interface {
	// SendDirect 发送私聊消息，投递 message:receive 给接收者
	SendDirect(senderId, receiverId, content string) (*respond.MessageRespond, error)
	// SendGroup 发送群消息，投递 group:message:receive 给群房间 (包括发送者)
	SendGroup(senderId, groupId, content string) (*respond.MessageRespond, error)
	// MarkRead 批量标记已读并通知发送者，返回本次标记的条数
	MarkRead(readerId, senderId string) (int64, error)
	// DeleteMessage 发送者本人物理删除消息
	DeleteMessage(requesterId, messageId string) error
	// GetConversation 与某人的最近私聊消息
	GetConversation(userId, peerId string, limit int) ([]respond.MessageRespond, error)
	// GetConversations 私聊会话列表 (最后一条消息 + 未读数)
	GetConversations(userId string) ([]respond.ConversationRespond, error)
	// GetGroupMessages 群内最近消息，仅成员可读
	GetGroupMessages(userId, groupId string, limit int) ([]respond.MessageRespond, error)
}

// FriendService 好友关系事件引擎
type FriendService interface {
	// RequestFriend 发起好友申请，投递 friend:request:receive 给对方
	RequestFriend(fromId, toId string) (*respond.FriendshipRespond, error)
	// AcceptFriend 接受好友申请，投递 friend:request:accepted 给申请者
	AcceptFriend(accepterId, friendshipId string) (*respond.FriendshipRespond, error)
	// RemoveFriend 删除好友关系 (任意状态)
	RemoveFriend(userId, friendId string) error
	// GetFriends 已接受的好友列表
	GetFriends(userId string) ([]respond.FriendRespond, error)
	// GetPendingRequests 收到的待处理申请
	GetPendingRequests(userId string) ([]respond.FriendshipRespond, error)
}

// SignalService 输入状态中继，不持久化不校验
type SignalService interface {
	// TypingDirect 向对方投递 typing:status
	TypingDirect(fromId, toId string, isTyping bool)
	// TypingGroup 向群房间 (排除自己) 投递 group:typing:status
	TypingGroup(fromId, username, groupId string, isTyping bool)
}

// GroupService 群组业务接口
// 成员变更不会推送给已连接的会话，房间在下次连接时刷新
type GroupService interface {
	// CreateGroup 创建群组，创建者为 ADMIN
	CreateGroup(creatorId string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error)
	// GetUserGroups 用户所在的群，按最近活跃倒序
	GetUserGroups(userId string) ([]respond.GroupRespond, error)
	// GetGroupDetails 群详情与成员，仅成员可读
	GetGroupDetails(userId, groupId string) (*respond.GroupDetailRespond, error)
	// AddMember ADMIN 添加成员
	AddMember(operatorId, groupId, userId string) (*respond.GroupMemberRespond, error)
	// RemoveMember ADMIN 移除成员，或成员移除自己
	RemoveMember(operatorId, groupId, userId string) error
	// LeaveGroup 退出群组
	LeaveGroup(userId, groupId string) error
}
