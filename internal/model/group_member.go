package model

import "time"

// GroupMember 群成员关系
// (group_uuid, user_uuid) 唯一索引保证一个用户在同一个群里至多一条记录
type GroupMember struct {
	ID        uint      `gorm:"primarykey"`
	GroupUuid string    `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:idx_group_user,priority:1;comment:群组ID"`
	UserUuid  string    `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex:idx_group_user,priority:2;index;comment:用户ID"`
	Role      string    `gorm:"column:role;type:varchar(10);not null;comment:ADMIN 或 MEMBER"`
	JoinedAt  time.Time `gorm:"column:joined_at;not null;comment:加入时间"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
