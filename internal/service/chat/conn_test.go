package chat

import (
	"encoding/json"
	"sync"
	"testing"

	"live_chat_server/internal/dto/event"
)

// fakeConn 记录写入的帧，closed 之后 Send 返回 false
type fakeConn struct {
	id     string
	userId string

	mu     sync.Mutex
	frames [][]byte
	closed bool
	closes int
}

func newFakeConn(id, userId string) *fakeConn {
	return &fakeConn{id: id, userId: userId}
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) UserID() string { return c.userId }

func (c *fakeConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.frames = append(c.frames, append([]byte(nil), frame...))
	return true
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closes++
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// events 解码全部已写入的帧
func (c *fakeConn) events(t *testing.T) []event.Inbound {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Inbound, 0, len(c.frames))
	for _, frame := range c.frames {
		in, err := event.Decode(frame)
		if err != nil {
			t.Fatalf("decode frame %s: %v", frame, err)
		}
		out = append(out, in)
	}
	return out
}

// named 返回指定事件的数据
func (c *fakeConn) named(t *testing.T, name string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	for _, in := range c.events(t) {
		if in.Name == name {
			out = append(out, in.Data)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func decodeData[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}
