package repository

import (
	"errors"

	"live_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 创建消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindByUuid 按消息 ID 查找
func (r *messageRepository) FindByUuid(uuid string) (*model.Message, error) {
	var message model.Message
	if err := r.db.First(&message, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%s", uuid)
	}
	return &message, nil
}

// FindConversation 查找双向私聊消息的最近 limit 条
// 先倒序取最新的 limit 条，再翻转为时间升序
func (r *messageRepository) FindConversation(userOneId, userTwoId string, limit int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("(send_id = ? AND receive_id = ?) OR (send_id = ? AND receive_id = ?)",
		userOneId, userTwoId, userTwoId, userOneId).
		Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 user1=%s user2=%s", userOneId, userTwoId)
	}
	reverse(messages)
	return messages, nil
}

// FindByGroupId 查找群内最近 limit 条消息
func (r *messageRepository) FindByGroupId(groupId string, limit int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("group_id = ?", groupId).Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群消息 group_id=%s", groupId)
	}
	reverse(messages)
	return messages, nil
}

// FindLatestByGroupId 查找群内最新一条消息
func (r *messageRepository) FindLatestByGroupId(groupId string) (*model.Message, error) {
	var message model.Message
	err := r.db.Where("group_id = ?", groupId).Order("id DESC").First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "查询群最新消息 group_id=%s", groupId)
	}
	return &message, nil
}

// FindDirectByUser 查找用户收发的全部私聊消息，最新的在前
func (r *messageRepository) FindDirectByUser(userId string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("group_id = '' AND (send_id = ? OR receive_id = ?)", userId, userId).
		Order("id DESC").Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询私聊消息 user=%s", userId)
	}
	return messages, nil
}

type unreadRow struct {
	SendId string
	Total  int64
}

// CountUnreadBySender 按发送者统计未读数
func (r *messageRepository) CountUnreadBySender(readerId string) (map[string]int64, error) {
	var rows []unreadRow
	if err := r.db.Model(&model.Message{}).
		Select("send_id, COUNT(*) AS total").
		Where("receive_id = ? AND is_read = ?", readerId, false).
		Group("send_id").
		Scan(&rows).Error; err != nil {
		return nil, wrapDBErrorf(err, "统计未读消息 reader=%s", readerId)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SendId] = row.Total
	}
	return counts, nil
}

// MarkRead 单条 UPDATE 完成批量已读，不逐条回写
func (r *messageRepository) MarkRead(senderId, readerId string) (int64, error) {
	res := r.db.Model(&model.Message{}).
		Where("send_id = ? AND receive_id = ? AND is_read = ?", senderId, readerId, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记已读 sender=%s reader=%s", senderId, readerId)
	}
	return res.RowsAffected, nil
}

// Delete 物理删除消息
func (r *messageRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%s", uuid)
	}
	return nil
}

func reverse(messages []model.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
