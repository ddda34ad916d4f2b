package chat

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"live_chat_server/internal/dao/mysql/repository"
	myredis "live_chat_server/internal/dao/redis"
	"live_chat_server/internal/dto/event"
	"live_chat_server/internal/model"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/jwt"
	"live_chat_server/pkg/util/keylock"

	"go.uber.org/zap"
)

// State 连接状态
// Connecting -> Authenticated -> Joined -> Active -> Disconnected
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateJoined
	StateActive
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateActive:
		return "active"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Session 一条已认证连接的会话
type Session struct {
	conn     Conn
	userId   string
	username string
	state    atomic.Int32
}

func (s *Session) UserID() string   { return s.userId }
func (s *Session) Username() string { return s.username }
func (s *Session) Conn() Conn       { return s.conn }
func (s *Session) State() State     { return State(s.state.Load()) }

func (s *Session) transition(from, to State) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// ManagerConfig 连接生命周期管理器的依赖
type ManagerConfig struct {
	Presence   *PresenceDirectory
	Rooms      *RoomRouter
	Broker     event.Notifier
	Repos      *repository.Repositories
	Cache      myredis.AsyncCacheService // 可为 nil，此时不维护 Redis 在线镜像
	Dispatcher *Dispatcher
}

// Manager 连接生命周期管理器
// 驱动在线目录和房间路由的变更，并维护持久化的在线标志
type Manager struct {
	presence   *PresenceDirectory
	rooms      *RoomRouter
	broker     event.Notifier
	repos      *repository.Repositories
	cache      myredis.AsyncCacheService
	dispatcher *Dispatcher

	// 同一用户的上线与离线副作用串行执行，不与在线目录的锁嵌套
	userLocks *keylock.Locker
}

// NewManager 创建生命周期管理器
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		presence:   cfg.Presence,
		rooms:      cfg.Rooms,
		broker:     cfg.Broker,
		repos:      cfg.Repos,
		cache:      cfg.Cache,
		dispatcher: cfg.Dispatcher,
		userLocks:  keylock.New(),
	}
}

// Presence 返回在线目录
func (m *Manager) Presence() *PresenceDirectory { return m.presence }

// Authenticate 校验握手凭证，凭证有效且用户存在才返回用户
// 凭证问题和用户不存在返回 AuthenticationError，存储故障原样返回
func (m *Manager) Authenticate(token string) (*model.User, error) {
	if token == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "缺少认证凭证")
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "凭证无效或已过期")
	}
	user, err := m.repos.User.FindByUuid(claims.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "用户不存在")
		}
		zap.L().Error("load user for handshake failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Accept 为已认证用户的连接建立会话并完成 Join
func (m *Manager) Accept(conn Conn, user *model.User) *Session {
	s := &Session{conn: conn, userId: user.Uuid, username: user.Username}
	s.state.Store(int32(StateConnecting))
	s.transition(StateConnecting, StateAuthenticated)
	m.join(s)
	return s
}

// join 顺序: 在线目录 -> 持久化在线 -> 全员广播 -> 个人房间与群房间 -> Redis 镜像
// 整个过程持有该用户的锁，与同一用户旧连接的离线处理互斥
func (m *Manager) join(s *Session) {
	unlock := m.userLocks.Lock(s.userId)
	defer unlock()

	if prev := m.presence.Register(s.userId, s.conn); prev != nil && prev.ID() != s.conn.ID() {
		zap.L().Info("presence replaced by newer connection",
			zap.String("user_id", s.userId), zap.String("old_conn", prev.ID()), zap.String("new_conn", s.conn.ID()))
	}

	if err := m.repos.User.SetOnline(s.userId, true, time.Now()); err != nil {
		zap.L().Error("persist online flag failed", zap.String("user_id", s.userId), zap.Error(err))
	}
	m.broker.BroadcastAll(event.New(event.UserOnline, event.PresencePayload{UserId: s.userId, IsOnline: true}))

	groupIds, err := m.repos.GroupMember.FindGroupIdsByUser(s.userId)
	if err != nil {
		zap.L().Error("load group rooms failed", zap.String("user_id", s.userId), zap.Error(err))
	}
	m.rooms.Join(s.conn, RoomsFor(s.userId, groupIds)...)

	m.mirror(s.userId, true)
	s.transition(StateAuthenticated, StateJoined)
	zap.L().Info("connection joined",
		zap.String("user_id", s.userId), zap.String("conn_id", s.conn.ID()), zap.Int("rooms", len(groupIds)+1))
}

// HandleFrame 分发一帧入站事件，并把回执写回发送者
func (m *Manager) HandleFrame(s *Session, frame []byte) {
	switch s.State() {
	case StateJoined:
		s.transition(StateJoined, StateActive)
	case StateActive:
	default:
		return
	}
	for _, ev := range m.dispatcher.Dispatch(s, frame) {
		out, err := json.Marshal(ev)
		if err != nil {
			zap.L().Error("encode reply failed", zap.String("event", ev.Name), zap.Error(err))
			continue
		}
		s.conn.Send(out)
	}
}

// Disconnect 幂等，只有第一次调用生效
// 只有在线目录中记录的仍是本连接时，才持久化离线并广播
func (m *Manager) Disconnect(s *Session) bool {
	if State(s.state.Swap(int32(StateDisconnected))) == StateDisconnected {
		return false
	}

	m.rooms.LeaveAll(s.conn)
	unlock := m.userLocks.Lock(s.userId)
	if m.presence.Unregister(s.userId, s.conn) {
		if err := m.repos.User.SetOnline(s.userId, false, time.Now()); err != nil {
			zap.L().Error("persist offline flag failed", zap.String("user_id", s.userId), zap.Error(err))
		}
		m.broker.BroadcastAll(event.New(event.UserOnline, event.PresencePayload{UserId: s.userId, IsOnline: false}))
		m.mirror(s.userId, false)
	}
	unlock()
	_ = s.conn.Close()
	zap.L().Info("connection closed", zap.String("user_id", s.userId), zap.String("conn_id", s.conn.ID()))
	return true
}

// ServeWs 在当前协程中运行连接直到断开
func (m *Manager) ServeWs(conn *WsConn, user *model.User) {
	s := m.Accept(conn, user)
	conn.Run(
		func(frame []byte) { m.HandleFrame(s, frame) },
		func() { m.Disconnect(s) },
	)
}

// mirror 异步维护 Redis 在线集合，失败只记录日志
// 调用方持有用户锁，任务以用户 ID 为 key 提交，执行顺序与上下线顺序一致
func (m *Manager) mirror(userId string, online bool) {
	if m.cache == nil {
		return
	}
	m.cache.SubmitTask(userId, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		var err error
		if online {
			err = m.cache.MarkOnline(ctx, userId)
		} else {
			err = m.cache.MarkOffline(ctx, userId)
		}
		if err != nil {
			zap.L().Warn("online mirror update failed", zap.String("user_id", userId), zap.Bool("online", online), zap.Error(err))
		}
	})
}

// ResetPresence 启动时对账
// 进程重启后内存目录为空，持久化的在线标志与 Redis 镜像一并清零
func (m *Manager) ResetPresence(ctx context.Context) error {
	n, err := m.repos.User.ResetOnline()
	if err != nil {
		return err
	}
	if m.cache != nil {
		if err := m.cache.ClearOnline(ctx); err != nil {
			return err
		}
	}
	zap.L().Info("presence reconciled", zap.Int64("reset_users", n))
	return nil
}
