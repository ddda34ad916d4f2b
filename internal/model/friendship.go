package model

import (
	"sort"
	"strings"
	"time"
)

// Friendship 好友关系
// PairKey 为两个用户 ID 排序后拼接的结果，唯一索引保证无序对 {A,B} 至多一条记录
type Friendship struct {
	ID          uint   `gorm:"primarykey"`
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:好友关系唯一id"`
	RequesterId string `gorm:"column:requester_id;type:char(20);not null;index;comment:发起者uuid"`
	TargetId    string `gorm:"column:target_id;type:char(20);not null;index;comment:目标uuid"`
	PairKey     string `gorm:"column:pair_key;type:varchar(48);not null;uniqueIndex;comment:无序用户对"`
	Status      string `gorm:"column:status;type:varchar(10);not null;index;comment:PENDING 或 ACCEPTED"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Friendship) TableName() string {
	return "friendship"
}

// PairKey 计算无序用户对的索引键，PairKey(a, b) == PairKey(b, a)
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// Other 返回关系中除 userId 外的另一方
func (f *Friendship) Other(userId string) string {
	if f.RequesterId == userId {
		return f.TargetId
	}
	return f.RequesterId
}
