// Package model 定义数据库实体模型
// 本文件定义用户模型，包含用户基本资料、认证信息和在线状态
package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户模型
// 对应数据库 user_info 表，用户不会被本服务删除
type User struct {
	gorm.Model

	// Uuid 用户唯一标识
	// 格式：U + 6位日期 + 11位随机字符，如 "U241230AbCdE123456"
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`

	// Username 显示名称，全局唯一
	Username string `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:用户名"`

	// UserCode 8 位大写短码，用于分享和搜索
	UserCode string `gorm:"column:user_code;uniqueIndex;type:char(8);not null;comment:公开短码"`

	Email string `gorm:"column:email;uniqueIndex;type:varchar(64);not null;comment:邮箱"`

	// Password 存储 bcrypt 哈希后的密码
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// IsOnline 持久化的在线标志，由连接生命周期维护
	IsOnline bool `gorm:"column:is_online;index;not null;default:false;comment:是否在线"`

	LastSeen sql.NullTime `gorm:"column:last_seen;comment:最近在线时间"`

	// RawPassword 明文密码（不存入数据库），在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "user_info"
}

// BeforeSave GORM Hook：在创建和更新前将 RawPassword 加密后存入 Password
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验密码是否正确
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}
