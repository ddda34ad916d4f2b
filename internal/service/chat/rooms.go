package chat

import (
	"encoding/json"
	"sync"

	"live_chat_server/internal/dto/event"
	"live_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// 投递方式
const (
	DeliverUnicast   = "unicast"
	DeliverRoom      = "room"
	DeliverAll       = "all"
	DeliverAllTarget = "*"
)

// Delivery 一次本机投递，Kafka 模式下作为消息体在节点间传递
type Delivery struct {
	Kind    string          `json:"kind"`
	Target  string          `json:"target,omitempty"`
	Exclude string          `json:"exclude,omitempty"`
	Frame   json.RawMessage `json:"frame"`
}

// RoomRouter 维护房间成员并向本机连接投递
// 房间集合只在连接 Joined 时计算一次，期间的成员变更要等下次连接才生效
type RoomRouter struct {
	presence *PresenceDirectory

	mu      sync.RWMutex
	rooms   map[string]map[string]Conn // room -> connID -> conn
	joined  map[string][]string        // connID -> rooms
	allConn map[string]Conn            // connID -> conn
}

// NewRoomRouter 房间路由依赖在线目录完成单播
func NewRoomRouter(presence *PresenceDirectory) *RoomRouter {
	return &RoomRouter{
		presence: presence,
		rooms:    make(map[string]map[string]Conn),
		joined:   make(map[string][]string),
		allConn:  make(map[string]Conn),
	}
}

// GroupRoom 群房间 ID
func GroupRoom(groupId string) string {
	return constants.GROUP_ROOM_PREFIX + groupId
}

// RoomsFor 个人房间 (即用户 ID) 加上每个群一个房间
func RoomsFor(userId string, groupIds []string) []string {
	rooms := make([]string, 0, len(groupIds)+1)
	rooms = append(rooms, userId)
	for _, gid := range groupIds {
		rooms = append(rooms, GroupRoom(gid))
	}
	return rooms
}

// Join 将连接加入房间，重复加入无副作用
func (r *RoomRouter) Join(conn Conn, rooms ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allConn[conn.ID()] = conn
	for _, room := range rooms {
		members, ok := r.rooms[room]
		if !ok {
			members = make(map[string]Conn)
			r.rooms[room] = members
		}
		if _, exists := members[conn.ID()]; exists {
			continue
		}
		members[conn.ID()] = conn
		r.joined[conn.ID()] = append(r.joined[conn.ID()], room)
	}
}

// LeaveAll 将连接移出全部房间
func (r *RoomRouter) LeaveAll(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.joined[conn.ID()] {
		members := r.rooms[room]
		delete(members, conn.ID())
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.joined, conn.ID())
	delete(r.allConn, conn.ID())
}

// RoomsOf 连接当前所在的房间
func (r *RoomRouter) RoomsOf(conn Conn) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.joined[conn.ID()]...)
}

// RoomSize 房间内的连接数
func (r *RoomRouter) RoomSize(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Deliver 执行一次本机投递，返回成功写入缓冲的连接数
// 目标连接在锁内收集，写缓冲在锁外进行
func (r *RoomRouter) Deliver(d Delivery) int {
	var targets []Conn
	switch d.Kind {
	case DeliverUnicast:
		if conn, ok := r.presence.Lookup(d.Target); ok {
			targets = append(targets, conn)
		}
	case DeliverRoom:
		r.mu.RLock()
		for _, conn := range r.rooms[d.Target] {
			if d.Exclude != "" && conn.UserID() == d.Exclude {
				continue
			}
			targets = append(targets, conn)
		}
		r.mu.RUnlock()
	case DeliverAll:
		r.mu.RLock()
		for _, conn := range r.allConn {
			targets = append(targets, conn)
		}
		r.mu.RUnlock()
	default:
		zap.L().Warn("unknown delivery kind", zap.String("kind", d.Kind))
		return 0
	}

	sent := 0
	for _, conn := range targets {
		if conn.Send(d.Frame) {
			sent++
		}
	}
	return sent
}

// Encode 将事件序列化为一次投递，每次投递只序列化一次
func Encode(kind, target, exclude string, ev *event.Event) (Delivery, error) {
	frame, err := json.Marshal(ev)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Kind: kind, Target: target, Exclude: exclude, Frame: frame}, nil
}

func (r *RoomRouter) deliverEvent(kind, target, exclude string, ev *event.Event) {
	d, err := Encode(kind, target, exclude, ev)
	if err != nil {
		zap.L().Error("encode event failed", zap.String("event", ev.Name), zap.Error(err))
		return
	}
	r.Deliver(d)
}

// Unicast 目标不在线时静默丢弃
func (r *RoomRouter) Unicast(userId string, ev *event.Event) {
	r.deliverEvent(DeliverUnicast, userId, "", ev)
}

// Broadcast 投递给房间内全部连接，发送者也在其中
func (r *RoomRouter) Broadcast(room string, ev *event.Event) {
	r.deliverEvent(DeliverRoom, room, "", ev)
}

// BroadcastExcept 投递给房间内除 excludeUserId 之外的连接，用于输入状态转发
func (r *RoomRouter) BroadcastExcept(room string, ev *event.Event, excludeUserId string) {
	r.deliverEvent(DeliverRoom, room, excludeUserId, ev)
}

// BroadcastAll 投递给本机全部连接，不区分房间
func (r *RoomRouter) BroadcastAll(ev *event.Event) {
	r.deliverEvent(DeliverAll, DeliverAllTarget, "", ev)
}

var _ event.Notifier = (*RoomRouter)(nil)
