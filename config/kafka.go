package config

import "time"

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Enabled         bool           `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Brokers         []string       `json:"brokers" yaml:"brokers" mapstructure:"brokers"`
	RedisRetryTopic string         `json:"redisRetryTopic" yaml:"redisRetryTopic" mapstructure:"redisRetryTopic"` // 缓存操作失败重试队列
	ConsumerConfig  ConsumerConfig `json:"consumer" yaml:"consumer" mapstructure:"consumer"`
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	GroupID        string        `json:"groupId" yaml:"groupId" mapstructure:"groupId"`
	MinBytes       int           `json:"minBytes" yaml:"minBytes" mapstructure:"minBytes"`
	MaxBytes       int           `json:"maxBytes" yaml:"maxBytes" mapstructure:"maxBytes"`
	MaxWait        time.Duration `json:"maxWait" yaml:"maxWait" mapstructure:"maxWait"`
	CommitInterval time.Duration `json:"commitInterval" yaml:"commitInterval" mapstructure:"commitInterval"`
	RetryBackoff   time.Duration `json:"retryBackoff" yaml:"retryBackoff" mapstructure:"retryBackoff"` // 重放前的基础退避
}

// DefaultKafkaConfig 返回本地开发的默认配置
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Enabled:         true,
		Brokers:         []string{"127.0.0.1:9092"},
		RedisRetryTopic: "market-message-redis-retry",
		ConsumerConfig: ConsumerConfig{
			GroupID:        "market-message-redis-retry-group",
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        500 * time.Millisecond,
			CommitInterval: time.Second,
			RetryBackoff:   200 * time.Millisecond,
		},
	}
}
