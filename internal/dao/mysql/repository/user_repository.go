package repository

import (
	"database/sql"
	"strings"
	"time"

	"live_chat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByEmail 按邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 email=%s", email)
	}
	return &user, nil
}

// FindByUsername 按用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindByUuids 按 UUID 列表查找用户
func (r *userRepository) FindByUuids(uuids []string) ([]model.User, error) {
	var users []model.User
	if len(uuids) == 0 {
		return users, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// likeEscaper 关键字中的通配符按字面匹配，转义符取 '!'，MySQL 与 SQLite 均支持 ESCAPE 子句
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search 按关键字模糊查找用户
func (r *userRepository) Search(keyword, excludeUuid string, limit int) ([]model.User, error) {
	var users []model.User
	like := "%" + likeEscaper.Replace(keyword) + "%"
	if err := r.db.Where("uuid <> ?", excludeUuid).
		Where("username LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!' OR user_code = ?", like, like, keyword).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, wrapDBErrorf(err, "搜索用户 keyword=%s", keyword)
	}
	return users, nil
}

// Create 创建用户
func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// SetOnline 更新在线标志与最近在线时间
func (r *userRepository) SetOnline(uuid string, online bool, at time.Time) error {
	if err := r.db.Model(&model.User{}).Where("uuid = ?", uuid).Updates(map[string]interface{}{
		"is_online": online,
		"last_seen": sql.NullTime{Time: at, Valid: true},
	}).Error; err != nil {
		return wrapDBErrorf(err, "更新在线状态 uuid=%s", uuid)
	}
	return nil
}

// ResetOnline 进程启动时清理上次遗留的在线标志
func (r *userRepository) ResetOnline() (int64, error) {
	res := r.db.Model(&model.User{}).Where("is_online = ?", true).Update("is_online", false)
	if res.Error != nil {
		return 0, wrapDBError(res.Error, "重置在线状态")
	}
	return res.RowsAffected, nil
}
