// Package message 实现消息扇出引擎
// 私聊与群聊消息先持久化再投递，同一房间内串行
package message

import (
	"sort"
	"strings"

	"live_chat_server/internal/dao/mysql/repository"
	"live_chat_server/internal/dto/event"
	"live_chat_server/internal/dto/respond"
	"live_chat_server/internal/model"
	"live_chat_server/pkg/constants"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/keylock"
	"live_chat_server/pkg/util/snowflake"
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos    *repository.Repositories
	notifier event.Notifier
	locks    *keylock.Locker
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories, notifier event.Notifier) *messageService {
	return &messageService{
		repos:    repos,
		notifier: notifier,
		locks:    keylock.New(),
	}
}

// SendDirect 发送私聊消息
//  1. 内容去除首尾空白后不能为空
//  2. 接收者必须存在
//  3. 以 isRead=false 入库
//  4. 投递 message:receive 给接收者 (不在线则丢弃)
func (m *messageService) SendDirect(senderId, receiverId, content string) (*respond.MessageRespond, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if receiverId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "接收者不能为空")
	}
	if _, err := m.repos.User.FindByUuid(receiverId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "接收用户不存在")
		}
		return nil, err
	}
	sender, err := m.repos.User.FindByUuid(senderId)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.Lock("dm:" + model.PairKey(senderId, receiverId))
	defer unlock()

	msg := &model.Message{
		Uuid:      snowflake.NextID(),
		SendId:    senderId,
		ReceiveId: receiverId,
		Content:   content,
		IsRead:    false,
	}
	if err := m.repos.Message.Create(msg); err != nil {
		return nil, err
	}

	res := respond.NewMessageRespond(msg, sender)
	m.notifier.Unicast(receiverId, event.New(event.MessageReceive, res))
	return &res, nil
}

// SendGroup 发送群消息
// 非成员返回 Forbidden，此时不入库也不广播
// 消息入库与群组 updated_at 推进在同一事务内完成
func (m *messageService) SendGroup(senderId, groupId, content string) (*respond.MessageRespond, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if groupId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群组不能为空")
	}
	if err := m.requireMember(groupId, senderId); err != nil {
		return nil, err
	}
	sender, err := m.repos.User.FindByUuid(senderId)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(constants.GROUP_ROOM_PREFIX + groupId)
	defer unlock()

	msg := &model.Message{
		Uuid:    snowflake.NextID(),
		SendId:  senderId,
		GroupId: groupId,
		Content: content,
	}
	err = m.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Message.Create(msg); err != nil {
			return err
		}
		return tx.Group.Touch(groupId, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	res := respond.NewMessageRespond(msg, sender)
	m.notifier.Broadcast(constants.GROUP_ROOM_PREFIX+groupId, event.New(event.GroupMessageReceive, res))
	return &res, nil
}

// MarkRead 将 senderId 发给 readerId 的未读消息一次 UPDATE 全部置为已读
// 每次调用都会向发送者投递一次 message:read:confirm
func (m *messageService) MarkRead(readerId, senderId string) (int64, error) {
	if senderId == "" {
		return 0, errorx.New(errorx.CodeInvalidParam, "发送者不能为空")
	}
	n, err := m.repos.Message.MarkRead(senderId, readerId)
	if err != nil {
		return 0, err
	}
	m.notifier.Unicast(senderId, event.New(event.MessageReadConfirm, event.ReadConfirmPayload{ReaderId: readerId}))
	return n, nil
}

// DeleteMessage 只有发送者可以删除，物理删除且不通知接收方
func (m *messageService) DeleteMessage(requesterId, messageId string) error {
	msg, err := m.repos.Message.FindByUuid(messageId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Wrap(err, errorx.CodeNotFound, "消息不存在")
		}
		return err
	}
	if msg.SendId != requesterId {
		return errorx.New(errorx.CodeForbidden, "只能删除自己发送的消息")
	}
	return m.repos.Message.Delete(messageId)
}

// GetConversation 与 peerId 的最近 limit 条私聊消息，按时间升序
func (m *messageService) GetConversation(userId, peerId string, limit int) ([]respond.MessageRespond, error) {
	if peerId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "对方用户不能为空")
	}
	messages, err := m.repos.Message.FindConversation(userId, peerId, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	users, err := m.loadUsers([]string{userId, peerId})
	if err != nil {
		return nil, err
	}
	return toMessageList(messages, users), nil
}

// GetConversations 私聊会话列表
// 每个对端取最新一条消息，附带未读数，按最后消息时间倒序
func (m *messageService) GetConversations(userId string) ([]respond.ConversationRespond, error) {
	messages, err := m.repos.Message.FindDirectByUser(userId)
	if err != nil {
		return nil, err
	}
	unread, err := m.repos.Message.CountUnreadBySender(userId)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]model.Message)
	var peers []string
	for _, msg := range messages {
		peer := msg.ReceiveId
		if peer == userId {
			peer = msg.SendId
		}
		if _, seen := latest[peer]; seen {
			continue
		}
		latest[peer] = msg
		peers = append(peers, peer)
	}

	users, err := m.loadUsers(append(peers, userId))
	if err != nil {
		return nil, err
	}

	list := make([]respond.ConversationRespond, 0, len(peers))
	for _, peer := range peers {
		peerUser, ok := users[peer]
		if !ok {
			continue
		}
		last := latest[peer]
		list = append(list, respond.ConversationRespond{
			Peer:        respond.NewUserBrief(peerUser),
			LastMessage: respond.NewMessageRespond(&last, users[last.SendId]),
			UnreadCount: unread[peer],
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastMessage.CreatedAt.After(list[j].LastMessage.CreatedAt)
	})
	return list, nil
}

// GetGroupMessages 群内最近 limit 条消息，仅成员可读
func (m *messageService) GetGroupMessages(userId, groupId string, limit int) ([]respond.MessageRespond, error) {
	if err := m.requireMember(groupId, userId); err != nil {
		return nil, err
	}
	messages, err := m.repos.Message.FindByGroupId(groupId, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	senderIds := make([]string, 0, len(messages))
	for _, msg := range messages {
		senderIds = append(senderIds, msg.SendId)
	}
	users, err := m.loadUsers(senderIds)
	if err != nil {
		return nil, err
	}
	return toMessageList(messages, users), nil
}

// requireMember 走 (group_uuid, user_uuid) 唯一索引判断成员身份
func (m *messageService) requireMember(groupId, userId string) error {
	if _, err := m.repos.GroupMember.FindByGroupAndUser(groupId, userId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Wrap(err, errorx.CodeForbidden, "你不是该群成员")
		}
		return err
	}
	return nil
}

func (m *messageService) loadUsers(ids []string) (map[string]*model.User, error) {
	users, err := m.repos.User.FindByUuids(dedupe(ids))
	if err != nil {
		return nil, err
	}
	byId := make(map[string]*model.User, len(users))
	for i := range users {
		byId[users[i].Uuid] = &users[i]
	}
	return byId, nil
}

func toMessageList(messages []model.Message, users map[string]*model.User) []respond.MessageRespond {
	list := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		list = append(list, respond.NewMessageRespond(&messages[i], users[messages[i].SendId]))
	}
	return list
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > constants.HISTORY_LIMIT {
		return constants.HISTORY_LIMIT
	}
	return limit
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
