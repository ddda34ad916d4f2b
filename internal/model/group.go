package model

import "gorm.io/gorm"

// Group 群组模型
// 由其全部 ADMIN 成员共同管理，UpdatedAt 随每条群消息推进
type Group struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`
	Name        string `gorm:"column:name;type:varchar(50);not null;comment:群名称"`
	Description string `gorm:"column:description;type:varchar(500);comment:群描述"`
	CreatorId   string `gorm:"column:creator_id;type:char(20);not null;comment:创建者uuid"`
	Avatar      string `gorm:"column:avatar;type:varchar(255);comment:头像"`
}

func (Group) TableName() string {
	return "group_info"
}
