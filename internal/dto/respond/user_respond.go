package respond

import (
	"time"

	"live_chat_server/internal/model"
)

// UserBrief 嵌入在消息、好友、群成员中的用户摘要
type UserBrief struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	UserCode string `json:"userCode"`
	Avatar   string `json:"avatar"`
	IsOnline bool   `json:"isOnline"`
}

// UserRespond 用户资料
type UserRespond struct {
	UserId    string     `json:"userId"`
	Username  string     `json:"username"`
	UserCode  string     `json:"userCode"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar"`
	IsOnline  bool       `json:"isOnline"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// LoginRespond 登录响应
type LoginRespond struct {
	User         UserRespond `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// RefreshTokenRespond 刷新响应
type RefreshTokenRespond struct {
	AccessToken string `json:"accessToken"`
}

// NewUserBrief 由用户模型构建摘要
func NewUserBrief(u *model.User) UserBrief {
	return UserBrief{
		UserId:   u.Uuid,
		Username: u.Username,
		UserCode: u.UserCode,
		Avatar:   u.Avatar,
		IsOnline: u.IsOnline,
	}
}

// NewUserRespond 由用户模型构建资料
func NewUserRespond(u *model.User) UserRespond {
	res := UserRespond{
		UserId:    u.Uuid,
		Username:  u.Username,
		UserCode:  u.UserCode,
		Email:     u.Email,
		Avatar:    u.Avatar,
		IsOnline:  u.IsOnline,
		CreatedAt: u.CreatedAt,
	}
	if u.LastSeen.Valid {
		lastSeen := u.LastSeen.Time
		res.LastSeen = &lastSeen
	}
	return res
}
