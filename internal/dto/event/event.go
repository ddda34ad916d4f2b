// Package event 定义实时连接上收发的事件帧
// 帧格式双向一致: {"event": "<name>", "data": {...}}
package event

import "encoding/json"

// 入站事件 (连接 -> 服务端)
const (
	MessageSend         = "message:send"
	GroupMessageSend    = "group:message:send"
	TypingStart         = "typing:start"
	TypingStop          = "typing:stop"
	GroupTypingStart    = "group:typing:start"
	GroupTypingStop     = "group:typing:stop"
	MessageRead         = "message:read"
	FriendRequestSend   = "friend:request:send"
	FriendRequestAccept = "friend:request:accept"
)

// 出站事件 (服务端 -> 连接)
const (
	MessageReceive        = "message:receive"
	MessageSent           = "message:sent"
	MessageError          = "message:error"
	GroupMessageReceive   = "group:message:receive"
	TypingStatus          = "typing:status"
	GroupTypingStatus     = "group:typing:status"
	MessageReadConfirm    = "message:read:confirm"
	UserOnline            = "user:online"
	FriendRequestReceive  = "friend:request:receive"
	FriendRequestSent     = "friend:request:sent"
	FriendRequestAccepted = "friend:request:accepted"
	FriendRequestError    = "friend:request:error"
)

// Event 出站事件
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// New 创建出站事件
func New(name string, data any) *Event {
	return &Event{Name: name, Data: data}
}

// Inbound 入站事件，Data 延迟到分发时按事件名解码
type Inbound struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Decode 解析一帧入站数据
func Decode(frame []byte) (Inbound, error) {
	var in Inbound
	err := json.Unmarshal(frame, &in)
	return in, err
}

// PresencePayload user:online
type PresencePayload struct {
	UserId   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// TypingPayload typing:status
type TypingPayload struct {
	UserId   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// GroupTypingPayload group:typing:status
type GroupTypingPayload struct {
	GroupId  string `json:"groupId"`
	UserId   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// ReadConfirmPayload message:read:confirm
type ReadConfirmPayload struct {
	ReaderId string `json:"readerId"`
}

// ErrorPayload message:error / friend:request:error
type ErrorPayload struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Kind  string `json:"kind"`
}

// Notifier 出站投递原语
// 所有方法都不阻塞，目标不在线时静默丢弃
type Notifier interface {
	// Unicast 通过在线目录找到用户当前连接并投递
	Unicast(userId string, ev *Event)
	// Broadcast 投递给房间内所有连接，包括发送者
	Broadcast(room string, ev *Event)
	// BroadcastExcept 投递给房间内除 excludeUserId 以外的连接
	BroadcastExcept(room string, ev *Event, excludeUserId string)
	// BroadcastAll 投递给所有在线连接
	BroadcastAll(ev *Event)
}
