// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"
	"time"

	"live_chat_server/internal/model"
	"live_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - ErrDuplicatedKey  -> CodeConflict
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, dbErrorCode(err), msg)
}

// wrapDBErrorf 功能同 wrapDBError，但支持 fmt.Sprintf 风格的格式化
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, dbErrorCode(err), format, args...)
}

func dbErrorCode(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errorx.CodeConflict
	default:
		return errorx.CodeDBError
	}
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.User, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.User, error)
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.User, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.User, error)
	// Search 按用户名、邮箱或短码模糊查找，排除 excludeUuid
	Search(keyword, excludeUuid string, limit int) ([]model.User, error)
	// Create 创建新用户
	Create(user *model.User) error
	// SetOnline 更新在线标志与最近在线时间
	SetOnline(uuid string, online bool, at time.Time) error
	// ResetOnline 将所有在线标志置为离线，返回受影响的行数
	ResetOnline() (int64, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 创建新消息
	Create(message *model.Message) error
	// FindByUuid 根据消息 ID 查找
	FindByUuid(uuid string) (*model.Message, error)
	// FindConversation 查找两个用户之间最近 limit 条私聊消息，按时间升序
	FindConversation(userOneId, userTwoId string, limit int) ([]model.Message, error)
	// FindByGroupId 查找群内最近 limit 条消息，按时间升序
	FindByGroupId(groupId string, limit int) ([]model.Message, error)
	// FindLatestByGroupId 查找群内最新一条消息，没有消息时返回 nil
	FindLatestByGroupId(groupId string) (*model.Message, error)
	// FindDirectByUser 查找与用户相关的全部私聊消息，按时间倒序
	FindDirectByUser(userId string) ([]model.Message, error)
	// CountUnreadBySender 统计 readerId 收到的未读消息数，按发送者分组
	CountUnreadBySender(readerId string) (map[string]int64, error)
	// MarkRead 将 senderId 发给 readerId 的未读消息一次性标记为已读
	MarkRead(senderId, readerId string) (int64, error)
	// Delete 物理删除消息
	Delete(uuid string) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	// FindByUuid 根据 UUID 查找群组
	FindByUuid(uuid string) (*model.Group, error)
	// FindByUuids 批量根据 UUID 查找群组
	FindByUuids(uuids []string) ([]model.Group, error)
	// Create 创建新群组
	Create(group *model.Group) error
	// Touch 推进群组的 updated_at
	Touch(uuid string, at time.Time) error
}

// GroupMemberWithUser 群成员详细信息（含用户资料）
type GroupMemberWithUser struct {
	UserId   string    `json:"userId"`
	Username string    `json:"username"`
	UserCode string    `json:"userCode"`
	Avatar   string    `json:"avatar"`
	IsOnline bool      `json:"isOnline"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// GroupMemberRepository 群成员数据访问接口
// 所有成员判断都走 (group_uuid, user_uuid) 索引，不做全表扫描
type GroupMemberRepository interface {
	// FindByGroupAndUser 查找单条成员关系，不存在返回 NotFound
	FindByGroupAndUser(groupUuid, userUuid string) (*model.GroupMember, error)
	// FindGroupIdsByUser 查找用户所在的全部群组 ID
	FindGroupIdsByUser(userUuid string) ([]string, error)
	// FindMembersWithUser 查找群成员（含用户详细信息）
	FindMembersWithUser(groupUuid string) ([]GroupMemberWithUser, error)
	// Create 添加群成员
	Create(member *model.GroupMember) error
	// CreateBatch 批量添加群成员
	CreateBatch(members []model.GroupMember) error
	// Delete 删除单个群成员，不存在返回 NotFound
	Delete(groupUuid, userUuid string) error
}

// FriendshipRepository 好友关系数据访问接口
// 无序用户对的存在性检查走 pair_key 唯一索引
type FriendshipRepository interface {
	// Create 创建好友关系
	Create(friendship *model.Friendship) error
	// FindByUuid 根据 UUID 查找
	FindByUuid(uuid string) (*model.Friendship, error)
	// FindByPairKey 根据无序用户对查找，任意方向任意状态
	FindByPairKey(pairKey string) (*model.Friendship, error)
	// UpdateStatus 更新状态
	UpdateStatus(uuid string, status string) error
	// FindAcceptedByUser 查找用户所有已接受的好友关系
	FindAcceptedByUser(userId string) ([]model.Friendship, error)
	// FindPendingByTarget 查找发给用户且未处理的好友申请
	FindPendingByTarget(targetId string) ([]model.Friendship, error)
	// DeleteByPairKey 删除用户对之间的关系，不存在返回 NotFound
	DeleteByPairKey(pairKey string) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db          *gorm.DB
	User        UserRepository
	Message     MessageRepository
	Group       GroupRepository
	GroupMember GroupMemberRepository
	Friendship  FriendshipRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		User:        NewUserRepository(db),
		Message:     NewMessageRepository(db),
		Group:       NewGroupRepository(db),
		GroupMember: NewGroupMemberRepository(db),
		Friendship:  NewFriendshipRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn 内只能使用 txRepos，不要再访问外层 Repositories
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
