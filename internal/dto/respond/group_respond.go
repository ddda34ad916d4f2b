package respond

import (
	"time"

	"live_chat_server/internal/model"
)

// GroupRespond 群组信息
type GroupRespond struct {
	GroupId     string          `json:"groupId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatorId   string          `json:"creatorId"`
	Avatar      string          `json:"avatar"`
	Role        string          `json:"role,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	LastMessage *MessageRespond `json:"lastMessage,omitempty"`
}

// GroupMemberRespond 群成员
type GroupMemberRespond struct {
	UserBrief
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// GroupDetailRespond 群详情
type GroupDetailRespond struct {
	GroupRespond
	Members []GroupMemberRespond `json:"members"`
}

// NewGroupRespond 由群组模型构建
func NewGroupRespond(g *model.Group) GroupRespond {
	return GroupRespond{
		GroupId:     g.Uuid,
		Name:        g.Name,
		Description: g.Description,
		CreatorId:   g.CreatorId,
		Avatar:      g.Avatar,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
