// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupMemberRepository 接口，处理群成员相关的数据库操作
package repository

import (
	"live_chat_server/internal/model"

	"gorm.io/gorm"
)

// groupMemberRepository GroupMemberRepository 接口的实现
type groupMemberRepository struct {
	db *gorm.DB
}

// NewGroupMemberRepository 创建 GroupMemberRepository 实例
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// FindByGroupAndUser 根据群组和用户查找成员关系
// 用于发言权限检查和重复加群检查
func (r *groupMemberRepository) FindByGroupAndUser(groupUuid, userUuid string) (*model.GroupMember, error) {
	var member model.GroupMember
	if err := r.db.Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &member, nil
}

// FindGroupIdsByUser 查找用户加入的全部群组 ID
// 连接加入时据此计算群房间
func (r *groupMemberRepository) FindGroupIdsByUser(userUuid string) ([]string, error) {
	var groupIds []string
	if err := r.db.Model(&model.GroupMember{}).Where("user_uuid = ?", userUuid).Pluck("group_uuid", &groupIds).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在群 user_uuid=%s", userUuid)
	}
	return groupIds, nil
}

// FindMembersWithUser 查询群成员详细信息
// 通过 JOIN 关联 user_info 表获取用户名、头像和在线状态
func (r *groupMemberRepository) FindMembersWithUser(groupUuid string) ([]GroupMemberWithUser, error) {
	var members []GroupMemberWithUser
	if err := r.db.Table("group_member").
		Select("user_info.uuid AS user_id, user_info.username, user_info.user_code, user_info.avatar, user_info.is_online, group_member.role, group_member.joined_at").
		Joins("JOIN user_info ON group_member.user_uuid = user_info.uuid").
		Where("group_member.group_uuid = ?", groupUuid).
		Order("group_member.joined_at ASC").
		Scan(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员详情 group_uuid=%s", groupUuid)
	}
	return members, nil
}

// Create 添加群成员
func (r *groupMemberRepository) Create(member *model.GroupMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBErrorf(err, "创建群成员 group_uuid=%s user_uuid=%s", member.GroupUuid, member.UserUuid)
	}
	return nil
}

// CreateBatch 批量添加群成员
func (r *groupMemberRepository) CreateBatch(members []model.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.db.Create(&members).Error; err != nil {
		return wrapDBError(err, "批量创建群成员")
	}
	return nil
}

// Delete 删除单个群成员
func (r *groupMemberRepository) Delete(groupUuid, userUuid string) error {
	res := r.db.Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).Delete(&model.GroupMember{})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "群成员不存在 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return nil
}
