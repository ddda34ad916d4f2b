package request

// CreateGroupRequest 创建群聊
// 创建者自动成为 ADMIN，memberIds 中的用户以 MEMBER 身份加入
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=50"`
	Description string   `json:"description" binding:"max=500"`
	MemberIds   []string `json:"memberIds"`
}

// GroupMemberRequest 添加或移除群成员
type GroupMemberRequest struct {
	GroupId string `json:"groupId" binding:"required"`
	UserId  string `json:"userId" binding:"required"`
}
