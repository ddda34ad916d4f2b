package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"live_chat_server/internal/dao/mysql/dbtest"
	"live_chat_server/internal/dao/mysql/repository"
	myredis "live_chat_server/internal/dao/redis"
	"live_chat_server/internal/dao/redis/redistest"
	"live_chat_server/internal/dto/event"
	"live_chat_server/internal/dto/respond"
	"live_chat_server/internal/model"
	"live_chat_server/internal/service/friend"
	"live_chat_server/internal/service/message"
	"live_chat_server/internal/service/signal"
	"live_chat_server/pkg/enum/group_member/group_role_enum"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/jwt"

	"github.com/redis/go-redis/v9"
)

type harness struct {
	repos   *repository.Repositories
	cache   *redistest.Memory
	manager *Manager
	users   map[string]*model.User
	connSeq int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	jwt.Init("test-secret", 15, 24)

	repos := dbtest.New(t)
	presence := NewPresenceDirectory()
	router := NewRoomRouter(presence)
	broker := NewChannelBroker(router)
	cache := redistest.New()

	dispatcher := NewDispatcher(Engines{
		Message: message.NewMessageService(repos, broker),
		Friend:  friend.NewFriendService(repos, broker),
		Signal:  signal.NewSignalService(broker),
	})
	h := &harness{
		repos: repos,
		cache: cache,
		manager: NewManager(ManagerConfig{
			Presence:   presence,
			Rooms:      router,
			Broker:     broker,
			Repos:      repos,
			Cache:      cache,
			Dispatcher: dispatcher,
		}),
		users: make(map[string]*model.User),
	}
	h.users["u1"] = dbtest.SeedUser(t, repos, "u1", "alice")
	h.users["u2"] = dbtest.SeedUser(t, repos, "u2", "bob")
	h.users["u3"] = dbtest.SeedUser(t, repos, "u3", "carol")
	return h
}

func (h *harness) connect(userId string) (*Session, *fakeConn) {
	h.connSeq++
	conn := newFakeConn(fmt.Sprintf("c%d", h.connSeq), userId)
	return h.manager.Accept(conn, h.users[userId]), conn
}

func (h *harness) send(s *Session, name, data string) {
	h.manager.HandleFrame(s, []byte(fmt.Sprintf(`{"event":%q,"data":%s}`, name, data)))
}

func (h *harness) seedGroup(t *testing.T, groupId string, userIds ...string) {
	t.Helper()
	if err := h.repos.Group.Create(&model.Group{Uuid: groupId, Name: groupId, CreatorId: userIds[0]}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	members := make([]model.GroupMember, 0, len(userIds))
	for i, id := range userIds {
		role := group_role_enum.Member
		if i == 0 {
			role = group_role_enum.Admin
		}
		members = append(members, model.GroupMember{GroupUuid: groupId, UserUuid: id, Role: role, JoinedAt: time.Now()})
	}
	if err := h.repos.GroupMember.CreateBatch(members); err != nil {
		t.Fatalf("create members: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)

	if _, err := h.manager.Authenticate(""); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("empty token err = %v", err)
	}
	if _, err := h.manager.Authenticate("garbage"); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("garbage token err = %v", err)
	}
	refresh, _, _ := jwt.GenerateRefreshToken("u1")
	if _, err := h.manager.Authenticate(refresh); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("refresh token err = %v", err)
	}
	ghost, _ := jwt.GenerateAccessToken("ghost")
	if _, err := h.manager.Authenticate(ghost); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("unknown user err = %v", err)
	}

	token, _ := jwt.GenerateAccessToken("u1")
	user, err := h.manager.Authenticate(token)
	if err != nil || user.Uuid != "u1" {
		t.Fatalf("user = %+v, %v", user, err)
	}
}

func TestAcceptJoinsRoomsAndMarksOnline(t *testing.T) {
	h := newHarness(t)
	h.seedGroup(t, "g1", "u1", "u2")
	_, observer := h.connect("u3")

	s, conn := h.connect("u1")

	if s.State() != StateJoined {
		t.Fatalf("state = %s", s.State())
	}
	rooms := h.manager.rooms.RoomsOf(conn)
	if len(rooms) != 2 || rooms[0] != "u1" || rooms[1] != "group:g1" {
		t.Fatalf("rooms = %v", rooms)
	}
	user, _ := h.repos.User.FindByUuid("u1")
	if !user.IsOnline {
		t.Fatalf("online flag not persisted")
	}
	online := observer.named(t, event.UserOnline)
	if len(online) != 1 {
		t.Fatalf("observer online events = %d", len(online))
	}
	if p := decodeData[event.PresencePayload](t, online[0]); p.UserId != "u1" || !p.IsOnline {
		t.Fatalf("payload = %+v", p)
	}
	members, _ := h.cache.OnlineUserIds(context.Background())
	if len(members) != 2 {
		t.Fatalf("mirror = %v", members)
	}
}

func TestDirectMessageDelivery(t *testing.T) {
	h := newHarness(t)
	a, connA := h.connect("u1")
	_, connB := h.connect("u2")
	connA.reset()

	h.send(a, event.MessageSend, `{"receiverId":"u2","content":"  hi "}`)

	received := connB.named(t, event.MessageReceive)
	if len(received) != 1 {
		t.Fatalf("b received %d messages", len(received))
	}
	msg := decodeData[respond.MessageRespond](t, received[0])
	if msg.Content != "hi" || msg.SenderId != "u1" || msg.ReceiverId != "u2" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Sender == nil || msg.Sender.Username != "alice" {
		t.Fatalf("sender = %+v", msg.Sender)
	}
	sent := connA.named(t, event.MessageSent)
	if len(sent) != 1 || decodeData[respond.MessageRespond](t, sent[0]).MessageId != msg.MessageId {
		t.Fatalf("sender confirmation = %v", sent)
	}
	if a.State() != StateActive {
		t.Fatalf("state = %s", a.State())
	}
}

func TestDirectMessageErrorStaysOnConnection(t *testing.T) {
	h := newHarness(t)
	a, connA := h.connect("u1")

	h.send(a, event.MessageSend, `{"receiverId":"u2","content":"   "}`)

	errs := connA.named(t, event.MessageError)
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if p := decodeData[event.ErrorPayload](t, errs[0]); p.Code != errorx.CodeInvalidParam {
		t.Fatalf("payload = %+v", p)
	}
	if connA.isClosed() {
		t.Fatalf("connection closed on handler error")
	}
}

func TestGroupMessageReachesAllMembers(t *testing.T) {
	h := newHarness(t)
	h.seedGroup(t, "g1", "u1", "u2")
	a, connA := h.connect("u1")
	_, connB := h.connect("u2")
	_, connC := h.connect("u3")

	h.send(a, event.GroupMessageSend, `{"groupId":"g1","content":"hello team"}`)

	for name, conn := range map[string]*fakeConn{"a": connA, "b": connB} {
		got := conn.named(t, event.GroupMessageReceive)
		if len(got) != 1 {
			t.Fatalf("%s received %d group messages", name, len(got))
		}
		if msg := decodeData[respond.MessageRespond](t, got[0]); msg.GroupId != "g1" || msg.Content != "hello team" {
			t.Fatalf("%s message = %+v", name, msg)
		}
	}
	if len(connC.named(t, event.GroupMessageReceive)) != 0 {
		t.Fatalf("non-member received the group message")
	}
}

func TestTypingSignals(t *testing.T) {
	h := newHarness(t)
	h.seedGroup(t, "g1", "u1", "u2")
	a, connA := h.connect("u1")
	_, connB := h.connect("u2")

	h.send(a, event.TypingStart, `{"receiverId":"u2"}`)
	h.send(a, event.GroupTypingStop, `{"groupId":"g1"}`)

	typing := connB.named(t, event.TypingStatus)
	if len(typing) != 1 || !decodeData[event.TypingPayload](t, typing[0]).IsTyping {
		t.Fatalf("typing = %v", typing)
	}
	group := connB.named(t, event.GroupTypingStatus)
	if len(group) != 1 {
		t.Fatalf("group typing = %v", group)
	}
	if p := decodeData[event.GroupTypingPayload](t, group[0]); p.Username != "alice" || p.IsTyping {
		t.Fatalf("group payload = %+v", p)
	}
	if len(connA.named(t, event.GroupTypingStatus)) != 0 {
		t.Fatalf("sender received its own group typing")
	}
}

func TestFriendHandshakeOverConnections(t *testing.T) {
	h := newHarness(t)
	a, connA := h.connect("u1")
	b, connB := h.connect("u2")

	h.send(a, event.FriendRequestSend, `{"friendId":"u2"}`)

	sent := connA.named(t, event.FriendRequestSent)
	if len(sent) != 1 {
		t.Fatalf("sent = %v", sent)
	}
	incoming := connB.named(t, event.FriendRequestReceive)
	if len(incoming) != 1 {
		t.Fatalf("incoming = %v", incoming)
	}
	req := decodeData[respond.FriendshipRespond](t, incoming[0])

	h.send(b, event.FriendRequestAccept, fmt.Sprintf(`{"friendshipId":%q}`, req.FriendshipId))

	if got := connA.named(t, event.FriendRequestAccepted); len(got) != 1 {
		t.Fatalf("requester accepted events = %v", got)
	}
	if got := connB.named(t, event.FriendRequestAccepted); len(got) != 1 {
		t.Fatalf("accepter reply = %v", got)
	}

	h.send(b, event.FriendRequestSend, `{"friendId":"u1"}`)
	errs := connB.named(t, event.FriendRequestError)
	if len(errs) != 1 || decodeData[event.ErrorPayload](t, errs[0]).Code != errorx.CodeConflict {
		t.Fatalf("conflict errors = %v", errs)
	}
}

func TestMarkReadConfirmsToSender(t *testing.T) {
	h := newHarness(t)
	a, _ := h.connect("u1")
	b, connB := h.connect("u2")
	h.send(b, event.MessageSend, `{"receiverId":"u1","content":"ping"}`)

	h.send(a, event.MessageRead, `{"senderId":"u2"}`)

	confirms := connB.named(t, event.MessageReadConfirm)
	if len(confirms) != 1 || decodeData[event.ReadConfirmPayload](t, confirms[0]).ReaderId != "u1" {
		t.Fatalf("confirms = %v", confirms)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := newHarness(t)
	a, connA := h.connect("u1")
	_, observer := h.connect("u2")
	observer.reset()

	if !h.manager.Disconnect(a) {
		t.Fatalf("first disconnect returned false")
	}
	if h.manager.Disconnect(a) {
		t.Fatalf("second disconnect returned true")
	}

	if a.State() != StateDisconnected || !connA.isClosed() {
		t.Fatalf("state = %s closed = %v", a.State(), connA.isClosed())
	}
	if _, ok := h.manager.Presence().Lookup("u1"); ok {
		t.Fatalf("u1 still present")
	}
	user, _ := h.repos.User.FindByUuid("u1")
	if user.IsOnline || !user.LastSeen.Valid {
		t.Fatalf("offline not persisted: %+v", user)
	}
	offline := observer.named(t, event.UserOnline)
	if len(offline) != 1 || decodeData[event.PresencePayload](t, offline[0]).IsOnline {
		t.Fatalf("offline events = %v", offline)
	}
	members, _ := h.cache.OnlineUserIds(context.Background())
	if len(members) != 1 || members[0] != "u2" {
		t.Fatalf("mirror = %v", members)
	}

	h.send(a, event.MessageSend, `{"receiverId":"u2","content":"late"}`)
	if len(observer.named(t, event.MessageReceive)) != 0 {
		t.Fatalf("frame handled after disconnect")
	}
}

func TestStaleDisconnectKeepsNewerConnection(t *testing.T) {
	h := newHarness(t)
	old, oldConn := h.connect("u1")
	_, newConn := h.connect("u1")
	b, observer := h.connect("u2")
	observer.reset()

	h.manager.Disconnect(old)

	conn, ok := h.manager.Presence().Lookup("u1")
	if !ok || conn.ID() != newConn.ID() {
		t.Fatalf("presence = %v, %v", conn, ok)
	}
	user, _ := h.repos.User.FindByUuid("u1")
	if !user.IsOnline {
		t.Fatalf("stale disconnect marked the user offline")
	}
	if len(observer.named(t, event.UserOnline)) != 0 {
		t.Fatalf("stale disconnect broadcast presence")
	}

	h.send(b, event.MessageSend, `{"receiverId":"u1","content":"still there?"}`)
	if len(newConn.named(t, event.MessageReceive)) != 1 {
		t.Fatalf("newer connection missed the message")
	}
	if len(oldConn.named(t, event.MessageReceive)) != 0 {
		t.Fatalf("closed connection received the message")
	}
}

func TestResetPresence(t *testing.T) {
	h := newHarness(t)
	h.connect("u1")
	h.connect("u2")

	if err := h.manager.ResetPresence(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, id := range []string{"u1", "u2"} {
		user, _ := h.repos.User.FindByUuid(id)
		if user.IsOnline {
			t.Fatalf("%s still online", id)
		}
	}
	members, _ := h.cache.OnlineUserIds(context.Background())
	if len(members) != 0 {
		t.Fatalf("mirror = %v", members)
	}
}

// slowOfflineUsers 让离线标志的写入变慢，拉长断开与重连之间的窗口
type slowOfflineUsers struct {
	repository.UserRepository
	delay time.Duration
}

func (u slowOfflineUsers) SetOnline(uuid string, online bool, at time.Time) error {
	if !online {
		time.Sleep(u.delay)
	}
	return u.UserRepository.SetOnline(uuid, online, at)
}

func TestReconnectDuringDisconnectStaysOnline(t *testing.T) {
	h := newHarness(t)
	_, observer := h.connect("u2")
	old, _ := h.connect("u1")
	observer.reset()
	h.repos.User = slowOfflineUsers{UserRepository: h.repos.User, delay: 30 * time.Millisecond}

	done := make(chan struct{})
	go func() {
		h.manager.Disconnect(old)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	_, fresh := h.connect("u1")
	<-done

	conn, ok := h.manager.Presence().Lookup("u1")
	if !ok || conn.ID() != fresh.ID() {
		t.Fatalf("presence = %v, %v", conn, ok)
	}
	user, _ := h.repos.User.FindByUuid("u1")
	if !user.IsOnline {
		t.Fatalf("durable flag says offline while connected")
	}
	var last *event.PresencePayload
	for _, raw := range observer.named(t, event.UserOnline) {
		p := decodeData[event.PresencePayload](t, raw)
		if p.UserId == "u1" {
			last = &p
		}
	}
	if last == nil || !last.IsOnline {
		t.Fatalf("last presence event for u1 = %+v", last)
	}
	members, _ := h.cache.OnlineUserIds(context.Background())
	if len(members) != 2 {
		t.Fatalf("mirror = %v", members)
	}
}

// pooledMirror 用真实的 worker 池执行镜像任务，离线写入带延迟
type pooledMirror struct {
	*redistest.Memory
	pool  *myredis.RedisCache
	delay time.Duration
}

func (c pooledMirror) SubmitTask(key string, action func()) {
	c.pool.SubmitTask(key, action)
}

func (c pooledMirror) MarkOffline(ctx context.Context, userId string) error {
	time.Sleep(c.delay)
	return c.Memory.MarkOffline(ctx, userId)
}

func TestMirrorFollowsQuickReconnect(t *testing.T) {
	h := newHarness(t)
	pool := myredis.NewRedisCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 8, 64)
	defer pool.Close()
	h.manager.cache = pooledMirror{Memory: h.cache, pool: pool, delay: 30 * time.Millisecond}

	old, _ := h.connect("u1")
	h.manager.Disconnect(old)
	h.connect("u1")

	drained := make(chan struct{})
	pool.SubmitTask("u1", func() { close(drained) })
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatalf("mirror tasks did not finish")
	}

	members, _ := h.cache.OnlineUserIds(context.Background())
	if len(members) != 1 || members[0] != "u1" {
		t.Fatalf("mirror = %v, want [u1]", members)
	}
}

// failingUsers 模拟数据库故障
type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) FindByUuid(string) (*model.User, error) {
	return nil, errorx.New(errorx.CodeDBError, "connection refused")
}

func TestAuthenticateStoreFailureIsNotUnauthorized(t *testing.T) {
	h := newHarness(t)
	h.repos.User = failingUsers{UserRepository: h.repos.User}

	token, _ := jwt.GenerateAccessToken("u1")
	_, err := h.manager.Authenticate(token)
	if errorx.GetCode(err) != errorx.CodeDBError {
		t.Fatalf("err = %v", err)
	}
	if errorx.Public(err) == "connection refused" {
		t.Fatalf("store detail leaked: %s", errorx.Public(err))
	}
}
