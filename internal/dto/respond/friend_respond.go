package respond

import (
	"time"

	"live_chat_server/internal/model"
)

// FriendshipRespond 好友关系记录
// friend:request:receive / sent / accepted 的载荷
type FriendshipRespond struct {
	FriendshipId string     `json:"friendshipId"`
	RequesterId  string     `json:"requesterId"`
	TargetId     string     `json:"targetId"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Requester    *UserBrief `json:"requester,omitempty"`
	Target       *UserBrief `json:"target,omitempty"`
}

// FriendRespond 好友列表项
type FriendRespond struct {
	UserBrief
	FriendshipId string    `json:"friendshipId"`
	Since        time.Time `json:"since"`
}

// NewFriendshipRespond requester / target 可为 nil
func NewFriendshipRespond(f *model.Friendship, requester, target *model.User) FriendshipRespond {
	res := FriendshipRespond{
		FriendshipId: f.Uuid,
		RequesterId:  f.RequesterId,
		TargetId:     f.TargetId,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
	if requester != nil {
		brief := NewUserBrief(requester)
		res.Requester = &brief
	}
	if target != nil {
		brief := NewUserBrief(target)
		res.Target = &brief
	}
	return res
}
