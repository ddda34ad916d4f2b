package model

import "time"

// Message 消息模型
// 对应数据库 message 表
// ReceiveId 与 GroupId 互斥：私聊消息只有 ReceiveId，群聊消息只有 GroupId
// 删除为物理删除，不保留墓碑
type Message struct {
	ID uint `gorm:"primarykey"`

	// Uuid 雪花算法生成的字符串 ID，避免前端精度丢失
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(24);not null;comment:消息雪花ID"`

	SendId string `gorm:"column:send_id;type:char(20);not null;index:idx_message_direct,priority:1;comment:发送者uuid"`

	ReceiveId string `gorm:"column:receive_id;type:char(20);index:idx_message_direct,priority:2;comment:接收者uuid，群聊为空"`

	GroupId string `gorm:"column:group_id;type:char(20);index;comment:群组uuid，私聊为空"`

	// Content 去除首尾空白后的消息内容，不允许为空
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// IsRead 仅对私聊消息有意义，群消息不跟踪每个成员的已读状态
	IsRead bool `gorm:"column:is_read;not null;default:false;index:idx_message_direct,priority:3;comment:是否已读"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}

// IsGroup 是否为群聊消息
func (m *Message) IsGroup() bool {
	return m.GroupId != ""
}
