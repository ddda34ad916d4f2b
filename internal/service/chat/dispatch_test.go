package chat

import (
	"encoding/json"
	"testing"

	"live_chat_server/internal/dto/event"
	"live_chat_server/pkg/errorx"
)

func dispatchOne(t *testing.T, d *Dispatcher, frame string) (string, event.ErrorPayload) {
	t.Helper()
	s := &Session{userId: "u1", username: "alice"}
	replies := d.Dispatch(s, []byte(frame))
	if len(replies) != 1 {
		t.Fatalf("replies = %+v", replies)
	}
	payload, ok := replies[0].Data.(event.ErrorPayload)
	if !ok {
		t.Fatalf("reply data = %T", replies[0].Data)
	}
	return replies[0].Name, payload
}

func TestDispatchRejectsMalformedFrame(t *testing.T) {
	name, p := dispatchOne(t, NewDispatcher(Engines{}), `{not json`)
	if name != event.MessageError || p.Code != errorx.CodeInvalidParam {
		t.Fatalf("reply = %s %+v", name, p)
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	name, p := dispatchOne(t, NewDispatcher(Engines{}), `{"event":"nope","data":{}}`)
	if name != event.MessageError || p.Code != errorx.CodeInvalidParam || p.Error != "未知事件 nope" {
		t.Fatalf("reply = %s %+v", name, p)
	}
}

func TestDispatchValidatesPayload(t *testing.T) {
	d := NewDispatcher(Engines{})

	name, p := dispatchOne(t, d, `{"event":"message:send","data":{"content":"hi"}}`)
	if name != event.MessageError || p.Error != "字段 receiverId 校验失败: required" {
		t.Fatalf("reply = %s %+v", name, p)
	}

	name, p = dispatchOne(t, d, `{"event":"friend:request:send"}`)
	if name != event.FriendRequestError || p.Error != "缺少事件数据" {
		t.Fatalf("reply = %s %+v", name, p)
	}

	name, p = dispatchOne(t, d, `{"event":"friend:request:accept","data":{"friendshipId":1}}`)
	if name != event.FriendRequestError || p.Code != errorx.CodeInvalidParam {
		t.Fatalf("reply = %s %+v", name, p)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	d := NewDispatcher(Engines{})
	d.Handle("boom", event.MessageError, func(*Session, json.RawMessage) ([]*event.Event, error) {
		panic("handler bug")
	})

	name, p := dispatchOne(t, d, `{"event":"boom","data":{}}`)
	if name != event.MessageError || p.Code != errorx.CodeServerBusy || p.Error != "服务繁忙" {
		t.Fatalf("reply = %s %+v", name, p)
	}
}

func TestDispatchHidesFaultDetails(t *testing.T) {
	d := NewDispatcher(Engines{})
	d.Handle("db", event.MessageError, func(*Session, json.RawMessage) ([]*event.Event, error) {
		return nil, errorx.New(errorx.CodeDBError, "select * from secrets failed")
	})

	_, p := dispatchOne(t, d, `{"event":"db","data":{}}`)
	if p.Error != "服务繁忙" || p.Code != errorx.CodeDBError {
		t.Fatalf("payload = %+v", p)
	}
}
