// Package dbtest 为测试提供基于内存 SQLite 的 Repository
// 表结构与生产环境相同，均由 mysql.AutoMigrate 创建
package dbtest

import (
	"testing"

	"live_chat_server/internal/dao/mysql"
	"live_chat_server/internal/dao/mysql/repository"
	"live_chat_server/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New 创建一个独立的内存数据库
// :memory: 每个连接都是一个新库，所以连接池固定为 1
func New(t testing.TB) *repository.Repositories {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewRepositories(db)
}

// SeedUser 直接写入一个用户，密码为 "secret1"
func SeedUser(t testing.TB, repos *repository.Repositories, uuid, username string) *model.User {
	t.Helper()

	user := &model.User{
		Uuid:        uuid,
		Username:    username,
		UserCode:    "C" + uuid,
		Email:       username + "@example.com",
		RawPassword: "secret1",
	}
	if err := repos.User.Create(user); err != nil {
		t.Fatalf("seed user %s: %v", uuid, err)
	}
	return user
}
