package kafka

import (
	"MarketServer/config"
	"MarketServer/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// NewReader 创建消费组 Reader，日志接入 zap
func NewReader(brokers []string, topic string, cfg config.ConsumerConfig) *kafka.Reader {
	adapter := NewZapLoggerAdapter(logger.L())
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		ErrorLogger:    adapter,
	})
}
