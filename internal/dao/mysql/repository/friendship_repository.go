package repository

import (
	"live_chat_server/internal/model"
	"live_chat_server/pkg/enum/friendship/friendship_status_enum"

	"gorm.io/gorm"
)

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository 创建好友关系 Repository
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Create 创建好友关系
// 并发请求同一用户对时由 pair_key 唯一索引兜底，返回 CodeConflict
func (r *friendshipRepository) Create(friendship *model.Friendship) error {
	if err := r.db.Create(friendship).Error; err != nil {
		return wrapDBErrorf(err, "创建好友关系 pair=%s", friendship.PairKey)
	}
	return nil
}

// FindByUuid 按 UUID 查找
func (r *friendshipRepository) FindByUuid(uuid string) (*model.Friendship, error) {
	var friendship model.Friendship
	if err := r.db.First(&friendship, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 uuid=%s", uuid)
	}
	return &friendship, nil
}

// FindByPairKey 按无序用户对查找
func (r *friendshipRepository) FindByPairKey(pairKey string) (*model.Friendship, error) {
	var friendship model.Friendship
	if err := r.db.First(&friendship, "pair_key = ?", pairKey).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 pair=%s", pairKey)
	}
	return &friendship, nil
}

// UpdateStatus 更新状态
func (r *friendshipRepository) UpdateStatus(uuid string, status string) error {
	if err := r.db.Model(&model.Friendship{}).Where("uuid = ?", uuid).Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "更新好友关系 uuid=%s", uuid)
	}
	return nil
}

// FindAcceptedByUser 查找用户的全部好友关系
func (r *friendshipRepository) FindAcceptedByUser(userId string) ([]model.Friendship, error) {
	var friendships []model.Friendship
	if err := r.db.Where("(requester_id = ? OR target_id = ?) AND status = ?", userId, userId, friendship_status_enum.Accepted).
		Order("updated_at DESC").Find(&friendships).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 user=%s", userId)
	}
	return friendships, nil
}

// FindPendingByTarget 查找待处理的好友申请
func (r *friendshipRepository) FindPendingByTarget(targetId string) ([]model.Friendship, error) {
	var friendships []model.Friendship
	if err := r.db.Where("target_id = ? AND status = ?", targetId, friendship_status_enum.Pending).
		Order("created_at DESC").Find(&friendships).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友申请 target=%s", targetId)
	}
	return friendships, nil
}

// DeleteByPairKey 删除用户对之间的关系
func (r *friendshipRepository) DeleteByPairKey(pairKey string) error {
	res := r.db.Where("pair_key = ?", pairKey).Delete(&model.Friendship{})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除好友关系 pair=%s", pairKey)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "好友关系不存在 pair=%s", pairKey)
	}
	return nil
}
