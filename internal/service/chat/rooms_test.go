package chat

import (
	"fmt"
	"sync"
	"testing"

	"live_chat_server/internal/dto/event"
)

func newRouter() (*PresenceDirectory, *RoomRouter) {
	p := NewPresenceDirectory()
	return p, NewRoomRouter(p)
}

func TestJoinIsIdempotent(t *testing.T) {
	_, r := newRouter()
	c := newFakeConn("c1", "u1")

	r.Join(c, RoomsFor("u1", []string{"g1"})...)
	r.Join(c, GroupRoom("g1"))

	if got := r.RoomsOf(c); len(got) != 2 || got[0] != "u1" || got[1] != "group:g1" {
		t.Fatalf("rooms = %v", got)
	}
	if r.RoomSize("group:g1") != 1 {
		t.Fatalf("room size = %d", r.RoomSize("group:g1"))
	}
}

func TestBroadcastReachesRoomMembersOnly(t *testing.T) {
	_, r := newRouter()
	a := newFakeConn("c1", "u1")
	b := newFakeConn("c2", "u2")
	outsider := newFakeConn("c3", "u3")
	r.Join(a, RoomsFor("u1", []string{"g1"})...)
	r.Join(b, RoomsFor("u2", []string{"g1"})...)
	r.Join(outsider, RoomsFor("u3", nil)...)

	r.Broadcast(GroupRoom("g1"), event.New(event.GroupMessageReceive, map[string]string{"content": "hi"}))

	if len(a.named(t, event.GroupMessageReceive)) != 1 || len(b.named(t, event.GroupMessageReceive)) != 1 {
		t.Fatalf("members missed the broadcast")
	}
	if len(outsider.events(t)) != 0 {
		t.Fatalf("outsider received %v", outsider.events(t))
	}
}

func TestBroadcastExceptSkipsUser(t *testing.T) {
	_, r := newRouter()
	a := newFakeConn("c1", "u1")
	b := newFakeConn("c2", "u2")
	r.Join(a, GroupRoom("g1"))
	r.Join(b, GroupRoom("g1"))

	r.BroadcastExcept(GroupRoom("g1"), event.New(event.GroupTypingStatus, nil), "u1")

	if len(a.events(t)) != 0 {
		t.Fatalf("excluded user received %v", a.events(t))
	}
	if len(b.named(t, event.GroupTypingStatus)) != 1 {
		t.Fatalf("b missed the event")
	}
}

func TestUnicastUsesPresence(t *testing.T) {
	p, r := newRouter()
	old := newFakeConn("c1", "u1")
	cur := newFakeConn("c2", "u1")
	p.Register("u1", old)
	p.Register("u1", cur)

	r.Unicast("u1", event.New(event.MessageReceive, nil))
	r.Unicast("offline", event.New(event.MessageReceive, nil))

	if len(old.events(t)) != 0 || len(cur.named(t, event.MessageReceive)) != 1 {
		t.Fatalf("unicast went to the wrong connection")
	}
}

func TestBroadcastAllAndLeaveAll(t *testing.T) {
	_, r := newRouter()
	a := newFakeConn("c1", "u1")
	b := newFakeConn("c2", "u2")
	r.Join(a, RoomsFor("u1", []string{"g1"})...)
	r.Join(b, RoomsFor("u2", nil)...)

	r.LeaveAll(a)
	r.BroadcastAll(event.New(event.UserOnline, event.PresencePayload{UserId: "u3", IsOnline: true}))

	if len(a.events(t)) != 0 {
		t.Fatalf("left connection received %v", a.events(t))
	}
	if len(b.named(t, event.UserOnline)) != 1 {
		t.Fatalf("b missed user:online")
	}
	if r.RoomSize("group:g1") != 0 || len(r.RoomsOf(a)) != 0 {
		t.Fatalf("room state not cleaned")
	}
}

func TestDeliverCountsAcceptedFrames(t *testing.T) {
	_, r := newRouter()
	a := newFakeConn("c1", "u1")
	b := newFakeConn("c2", "u2")
	r.Join(a, "room")
	r.Join(b, "room")
	_ = b.Close()

	d, err := Encode(DeliverRoom, "room", "", event.New("x", nil))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n := r.Deliver(d); n != 1 {
		t.Fatalf("sent = %d, want 1", n)
	}
	if n := r.Deliver(Delivery{Kind: "bogus"}); n != 0 {
		t.Fatalf("unknown kind sent = %d", n)
	}
}

// 多个协程同时上线、收发、下线，同一用户的连接互相覆盖
func TestPresenceAndRoomsUnderConcurrency(t *testing.T) {
	p, r := newRouter()
	ev := event.New(event.TypingStatus, event.TypingPayload{UserId: "u0", IsTyping: true})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userId := fmt.Sprintf("u%d", i%4)
			for j := 0; j < 200; j++ {
				conn := newFakeConn(fmt.Sprintf("c%d-%d", i, j), userId)
				p.Register(userId, conn)
				r.Join(conn, RoomsFor(userId, []string{"g1"})...)
				r.Broadcast(GroupRoom("g1"), ev)
				r.BroadcastExcept(GroupRoom("g1"), ev, userId)
				r.Unicast(userId, ev)
				r.BroadcastAll(ev)
				p.Lookup(userId)
				_ = p.OnlineUserIds()
				r.LeaveAll(conn)
				p.Unregister(userId, conn)
			}
		}(i)
	}
	wg.Wait()

	if p.Count() != 0 {
		t.Fatalf("presence left = %v", p.OnlineUserIds())
	}
	for _, room := range []string{GroupRoom("g1"), "u0", "u1", "u2", "u3"} {
		if n := r.RoomSize(room); n != 0 {
			t.Fatalf("room %s size = %d", room, n)
		}
	}
}
