// Package eventtest 提供记录投递调用的 Notifier，用于 Service 层测试
package eventtest

import (
	"sync"

	"live_chat_server/internal/dto/event"
)

// 投递方式
const (
	KindUnicast   = "unicast"
	KindBroadcast = "broadcast"
	KindExcept    = "except"
	KindAll       = "all"
)

// Delivery 一次投递调用
type Delivery struct {
	Kind    string
	Target  string
	Exclude string
	Event   *event.Event
}

// Recorder 记录所有投递调用，不做实际发送
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (r *Recorder) record(d Delivery) {
	r.mu.Lock()
	r.deliveries = append(r.deliveries, d)
	r.mu.Unlock()
}

func (r *Recorder) Unicast(userId string, ev *event.Event) {
	r.record(Delivery{Kind: KindUnicast, Target: userId, Event: ev})
}

func (r *Recorder) Broadcast(room string, ev *event.Event) {
	r.record(Delivery{Kind: KindBroadcast, Target: room, Event: ev})
}

func (r *Recorder) BroadcastExcept(room string, ev *event.Event, excludeUserId string) {
	r.record(Delivery{Kind: KindExcept, Target: room, Exclude: excludeUserId, Event: ev})
}

func (r *Recorder) BroadcastAll(ev *event.Event) {
	r.record(Delivery{Kind: KindAll, Event: ev})
}

// All 返回到目前为止的全部投递
func (r *Recorder) All() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

// Named 返回指定事件名的投递
func (r *Recorder) Named(name string) []Delivery {
	var out []Delivery
	for _, d := range r.All() {
		if d.Event.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.deliveries = nil
	r.mu.Unlock()
}

var _ event.Notifier = (*Recorder)(nil)
