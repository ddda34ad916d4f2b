package respond

import (
	"time"

	"live_chat_server/internal/model"
)

// MessageRespond 消息
// message:receive、message:sent、group:message:receive 的载荷，也用于历史消息
type MessageRespond struct {
	MessageId  string     `json:"messageId"`
	SenderId   string     `json:"senderId"`
	ReceiverId string     `json:"receiverId,omitempty"`
	GroupId    string     `json:"groupId,omitempty"`
	Content    string     `json:"content"`
	IsRead     bool       `json:"isRead"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Sender     *UserBrief `json:"sender,omitempty"`
}

// ConversationRespond 私聊会话列表项
type ConversationRespond struct {
	Peer        UserBrief      `json:"peer"`
	LastMessage MessageRespond `json:"lastMessage"`
	UnreadCount int64          `json:"unreadCount"`
}

// NewMessageRespond sender 为 nil 时不附带发送者摘要
func NewMessageRespond(m *model.Message, sender *model.User) MessageRespond {
	res := MessageRespond{
		MessageId:  m.Uuid,
		SenderId:   m.SendId,
		ReceiverId: m.ReceiveId,
		GroupId:    m.GroupId,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if sender != nil {
		brief := NewUserBrief(sender)
		res.Sender = &brief
	}
	return res
}
