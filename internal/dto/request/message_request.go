package request

// SendMessageRequest 私聊消息
// 同时作为 message:send 事件载荷和 POST /message/send 请求体
// content 的空白校验在 Service 层完成
type SendMessageRequest struct {
	ReceiverId string `json:"receiverId" binding:"required"`
	Content    string `json:"content"`
}

// SendGroupMessageRequest 群消息
// group:message:send 事件载荷和 POST /group/message 请求体
type SendGroupMessageRequest struct {
	GroupId string `json:"groupId" binding:"required"`
	Content string `json:"content"`
}

// MarkReadRequest 将 senderId 发来的消息全部标记为已读
type MarkReadRequest struct {
	SenderId string `json:"senderId" binding:"required"`
}

// TypingRequest typing:start / typing:stop
type TypingRequest struct {
	ReceiverId string `json:"receiverId" binding:"required"`
}

// GroupTypingRequest group:typing:start / group:typing:stop
type GroupTypingRequest struct {
	GroupId string `json:"groupId" binding:"required"`
}
