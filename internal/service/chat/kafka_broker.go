package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"live_chat_server/internal/config"
	"live_chat_server/internal/dto/event"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type deliveryWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type deliveryReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaBroker 分布式模式
// 每次投递写入 Kafka，以目标 (用户或房间) 为 key，同一房间落在同一分区，保持房间内顺序
// 每个节点使用独立的消费组读取全量投递，再交给本机房间路由
type KafkaBroker struct {
	router  *RoomRouter
	writer  deliveryWriter
	reader  deliveryReader
	timeout time.Duration
}

// NewKafkaBroker 根据配置创建 Writer/Reader
// nodeId 决定消费组，多节点部署时必须各不相同
func NewKafkaBroker(router *RoomRouter, cfg config.KafkaConfig, nodeId string) *KafkaBroker {
	timeout := cfg.Timeout * time.Second
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.HostPort},
		Topic:          cfg.DeliveryTopic,
		GroupID:        "live_chat_" + nodeId,
		CommitInterval: timeout,
		StartOffset:    kafka.LastOffset,
	})
	return newKafkaBroker(router, newDeliveryWriter(cfg, timeout), reader, timeout)
}

// publishBatchTimeout 单条投递等待凑批的上限
// 为什么：WriteMessages 是同步的，kafka-go 默认凑批 1s，而发布发生在房间锁和用户锁之内
const publishBatchTimeout = 5 * time.Millisecond

// newDeliveryWriter 以目标为 key 做哈希分区
func newDeliveryWriter(cfg config.KafkaConfig, timeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  cfg.DeliveryTopic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           publishBatchTimeout,
		WriteTimeout:           timeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func newKafkaBroker(router *RoomRouter, writer deliveryWriter, reader deliveryReader, timeout time.Duration) *KafkaBroker {
	return &KafkaBroker{router: router, writer: writer, reader: reader, timeout: timeout}
}

// publish 写入失败时退化为本机投递，至少本节点的连接能收到
func (b *KafkaBroker) publish(kind, target, exclude string, ev *event.Event) {
	d, err := Encode(kind, target, exclude, ev)
	if err != nil {
		zap.L().Error("encode event failed", zap.String("event", ev.Name), zap.Error(err))
		return
	}
	value, err := json.Marshal(d)
	if err != nil {
		zap.L().Error("encode delivery failed", zap.Error(err))
		return
	}

	ctx := context.Background()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(target), Value: value}); err != nil {
		zap.L().Error("kafka publish failed, delivering locally",
			zap.String("event", ev.Name), zap.String("target", target), zap.Error(err))
		b.router.Deliver(d)
	}
}

func (b *KafkaBroker) Unicast(userId string, ev *event.Event) {
	b.publish(DeliverUnicast, userId, "", ev)
}

func (b *KafkaBroker) Broadcast(room string, ev *event.Event) {
	b.publish(DeliverRoom, room, "", ev)
}

func (b *KafkaBroker) BroadcastExcept(room string, ev *event.Event, excludeUserId string) {
	b.publish(DeliverRoom, room, excludeUserId, ev)
}

func (b *KafkaBroker) BroadcastAll(ev *event.Event) {
	b.publish(DeliverAll, DeliverAllTarget, "", ev)
}

// Start 消费循环，ctx 结束时返回 nil
func (b *KafkaBroker) Start(ctx context.Context) error {
	zap.L().Info("kafka delivery consumer started")
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			zap.L().Error("kafka read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		b.apply(msg)
	}
}

func (b *KafkaBroker) apply(msg kafka.Message) {
	var d Delivery
	if err := json.Unmarshal(msg.Value, &d); err != nil {
		zap.L().Error("decode delivery failed",
			zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}
	b.router.Deliver(d)
}

// Close 关闭 Writer 和 Reader
func (b *KafkaBroker) Close() error {
	return errors.Join(b.writer.Close(), b.reader.Close())
}

var _ MessageBroker = (*KafkaBroker)(nil)
