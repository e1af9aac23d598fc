package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketServer/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

// ErrBreakerOpen 熔断器打开，消息未发送
var ErrBreakerOpen = errors.New("kafka producer circuit breaker is open")

// messageWriter kafka.Writer 的最小子集，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 带熔断的 Kafka 生产者。
// Kafka 持续不可用时快速失败，避免每次缓存重试任务都卡在网络超时上。
type Producer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	topic   string
}

// NewProducer 创建生产者，按 key 哈希分区保证同一 key 的任务有序
func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
		AllowAutoTopicCreation: true,
		ErrorLogger:            NewZapLoggerAdapter(logger.L()),
	}
	return newProducer(w, topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{
		writer:  w,
		breaker: NewCircuitBreaker("kafka-producer-" + topic),
		topic:   topic,
	}
}

// NewCircuitBreaker 连续失败 5 次打开，10 秒后半开探测
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}

// Topic 返回生产者绑定的 topic
func (p *Producer) Topic() string { return p.topic }

// Send 发送一条消息
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrBreakerOpen
	}
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	return nil
}

// Close 关闭底层 writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
