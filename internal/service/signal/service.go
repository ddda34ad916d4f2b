// Package signal 中继输入状态
// 不持久化，不检查对方是否存在或是否为群成员，目标不在线时静默丢弃
package signal

import (
	"live_chat_server/internal/dto/event"
	"live_chat_server/pkg/constants"
)

type signalService struct {
	notifier event.Notifier
}

// NewSignalService 构造函数
func NewSignalService(notifier event.Notifier) *signalService {
	return &signalService{notifier: notifier}
}

// TypingDirect 向私聊对方投递 typing:status
func (s *signalService) TypingDirect(fromId, toId string, isTyping bool) {
	s.notifier.Unicast(toId, event.New(event.TypingStatus, event.TypingPayload{
		UserId:   fromId,
		IsTyping: isTyping,
	}))
}

// TypingGroup 向群房间内除自己以外的连接投递 group:typing:status
func (s *signalService) TypingGroup(fromId, username, groupId string, isTyping bool) {
	s.notifier.BroadcastExcept(constants.GROUP_ROOM_PREFIX+groupId, event.New(event.GroupTypingStatus, event.GroupTypingPayload{
		GroupId:  groupId,
		UserId:   fromId,
		Username: username,
		IsTyping: isTyping,
	}), fromId)
}
