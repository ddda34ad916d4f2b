package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"

	"live_chat_server/internal/dto/event"
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/service"
	"live_chat_server/pkg/errorx"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// HandlerFunc 处理一个入站事件，返回需要回给发送者的事件
// 对其他用户的投递由各业务引擎通过 Notifier 完成
type HandlerFunc func(s *Session, payload json.RawMessage) ([]*event.Event, error)

type route struct {
	handle     HandlerFunc
	errorEvent string
}

// Engines 分发表依赖的业务引擎
type Engines struct {
	Message service.MessageService
	Friend  service.FriendService
	Signal  service.SignalService
}

// Dispatcher 事件名 -> 处理函数 的分发表
// 任何错误都在这里转换为错误事件，不会中断连接
type Dispatcher struct {
	routes   map[string]route
	validate *validator.Validate
}

// NewDispatcher 注册全部入站事件
func NewDispatcher(engines Engines) *Dispatcher {
	d := &Dispatcher{
		routes:   make(map[string]route),
		validate: newPayloadValidator(),
	}

	d.Handle(event.MessageSend, event.MessageError, d.sendDirect(engines.Message))
	d.Handle(event.GroupMessageSend, event.MessageError, d.sendGroup(engines.Message))
	d.Handle(event.MessageRead, event.MessageError, d.markRead(engines.Message))
	d.Handle(event.TypingStart, event.MessageError, d.typingDirect(engines.Signal, true))
	d.Handle(event.TypingStop, event.MessageError, d.typingDirect(engines.Signal, false))
	d.Handle(event.GroupTypingStart, event.MessageError, d.typingGroup(engines.Signal, true))
	d.Handle(event.GroupTypingStop, event.MessageError, d.typingGroup(engines.Signal, false))
	d.Handle(event.FriendRequestSend, event.FriendRequestError, d.requestFriend(engines.Friend))
	d.Handle(event.FriendRequestAccept, event.FriendRequestError, d.acceptFriend(engines.Friend))
	return d
}

// Handle 注册或覆盖一个事件处理函数，errorEvent 为出错时回给发送者的事件名
func (d *Dispatcher) Handle(name, errorEvent string, h HandlerFunc) {
	d.routes[name] = route{handle: h, errorEvent: errorEvent}
}

// Dispatch 解码并处理一帧，始终返回要回给发送者的事件
func (d *Dispatcher) Dispatch(s *Session, frame []byte) (replies []*event.Event) {
	in, err := event.Decode(frame)
	if err != nil {
		return []*event.Event{errorEvent(event.MessageError, errorx.Wrap(err, errorx.CodeInvalidParam, "无法解析的事件帧"))}
	}
	r, ok := d.routes[in.Name]
	if !ok {
		return []*event.Event{errorEvent(event.MessageError, errorx.Newf(errorx.CodeInvalidParam, "未知事件 %s", in.Name))}
	}

	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("event handler panic",
				zap.String("event", in.Name),
				zap.String("user_id", s.UserID()),
				zap.Any("recover", rec),
				zap.String("stack", string(debug.Stack())))
			replies = []*event.Event{errorEvent(r.errorEvent, errorx.ErrServerBusy)}
		}
	}()

	replies, err = r.handle(s, in.Data)
	if err != nil {
		if errorx.IsFault(err) {
			zap.L().Error("event handler failed",
				zap.String("event", in.Name), zap.String("user_id", s.UserID()), zap.Error(err))
		}
		return []*event.Event{errorEvent(r.errorEvent, err)}
	}
	return replies
}

func errorEvent(name string, err error) *event.Event {
	return event.New(name, event.ErrorPayload{
		Error: errorx.Public(err),
		Code:  errorx.GetCode(err),
		Kind:  errorx.Kind(err),
	})
}

// newPayloadValidator 与 Gin 共用 binding 标签，字段名取 json 标签
func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func decodePayload[T any](d *Dispatcher, raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 || string(raw) == "null" {
		return payload, errorx.New(errorx.CodeInvalidParam, "缺少事件数据")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, errorx.Wrap(err, errorx.CodeInvalidParam, "事件数据格式错误")
	}
	if err := d.validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return payload, errorx.Wrap(err, errorx.CodeInvalidParam, fmt.Sprintf("字段 %s 校验失败: %s", fe.Field(), fe.Tag()))
		}
		return payload, errorx.Wrap(err, errorx.CodeInvalidParam, "事件数据校验失败")
	}
	return payload, nil
}

func (d *Dispatcher) sendDirect(svc service.MessageService) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.SendMessageRequest](d, raw)
		if err != nil {
			return nil, err
		}
		msg, err := svc.SendDirect(s.UserID(), p.ReceiverId, p.Content)
		if err != nil {
			return nil, err
		}
		return []*event.Event{event.New(event.MessageSent, msg)}, nil
	}
}

// sendGroup 群房间广播已包含发送者，不再单独回执
func (d *Dispatcher) sendGroup(svc service.MessageService) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.SendGroupMessageRequest](d, raw)
		if err != nil {
			return nil, err
		}
		_, err = svc.SendGroup(s.UserID(), p.GroupId, p.Content)
		return nil, err
	}
}

func (d *Dispatcher) markRead(svc service.MessageService) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.MarkReadRequest](d, raw)
		if err != nil {
			return nil, err
		}
		_, err = svc.MarkRead(s.UserID(), p.SenderId)
		return nil, err
	}
}

func (d *Dispatcher) typingDirect(svc service.SignalService, isTyping bool) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.TypingRequest](d, raw)
		if err != nil {
			return nil, err
		}
		svc.TypingDirect(s.UserID(), p.ReceiverId, isTyping)
		return nil, nil
	}
}

func (d *Dispatcher) typingGroup(svc service.SignalService, isTyping bool) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.GroupTypingRequest](d, raw)
		if err != nil {
			return nil, err
		}
		svc.TypingGroup(s.UserID(), s.Username(), p.GroupId, isTyping)
		return nil, nil
	}
}

func (d *Dispatcher) requestFriend(svc service.FriendService) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.FriendRequestRequest](d, raw)
		if err != nil {
			return nil, err
		}
		res, err := svc.RequestFriend(s.UserID(), p.FriendId)
		if err != nil {
			return nil, err
		}
		return []*event.Event{event.New(event.FriendRequestSent, res)}, nil
	}
}

func (d *Dispatcher) acceptFriend(svc service.FriendService) HandlerFunc {
	return func(s *Session, raw json.RawMessage) ([]*event.Event, error) {
		p, err := decodePayload[request.FriendAcceptRequest](d, raw)
		if err != nil {
			return nil, err
		}
		res, err := svc.AcceptFriend(s.UserID(), p.FriendshipId)
		if err != nil {
			return nil, err
		}
		return []*event.Event{event.New(event.FriendRequestAccepted, res)}, nil
	}
}
