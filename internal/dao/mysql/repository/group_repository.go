package repository

import (
	"time"

	"live_chat_server/internal/model"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建群组 Repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByUuid 按 UUID 查找群组
func (r *groupRepository) FindByUuid(uuid string) (*model.Group, error) {
	var group model.Group
	if err := r.db.First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindByUuids 按 UUID 列表查找群组，按最近活跃倒序
func (r *groupRepository) FindByUuids(uuids []string) ([]model.Group, error) {
	var groups []model.Group
	if len(uuids) == 0 {
		return groups, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Order("updated_at DESC").Find(&groups).Error; err != nil {
		return nil, wrapDBError(err, "批量查询群组")
	}
	return groups, nil
}

// Create 创建群组
func (r *groupRepository) Create(group *model.Group) error {
	if err := r.db.Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

// Touch 推进群组的 updated_at，用于群列表按活跃度排序
func (r *groupRepository) Touch(uuid string, at time.Time) error {
	if err := r.db.Model(&model.Group{}).Where("uuid = ?", uuid).UpdateColumn("updated_at", at).Error; err != nil {
		return wrapDBErrorf(err, "更新群组活跃时间 uuid=%s", uuid)
	}
	return nil
}
