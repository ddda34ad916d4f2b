package handler

import (
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
// REST 发送与实时发送走同一个 MessageService，扇出行为一致
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Conversations 私聊会话列表
// GET /message/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	data, err := h.messageSvc.GetConversations(getUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Conversation 与某个用户的聊天记录，按时间正序
// GET /message/conversation/:userId?limit=50
func (h *MessageHandler) Conversation(c *gin.Context) {
	var q request.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetConversation(getUserId(c), c.Param("userId"), q.Limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Send 发送私聊消息
// POST /message/send
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendDirect(getUserId(c), req.ReceiverId, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkRead 将对方发来的消息全部标记为已读
// PUT /message/read
// 响应: { updated: n }
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	n, err := h.messageSvc.MarkRead(getUserId(c), req.SenderId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"updated": n})
}

// Delete 删除自己发送的消息
// DELETE /message/:messageId
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messageSvc.DeleteMessage(getUserId(c), c.Param("messageId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
