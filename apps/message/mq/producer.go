package mq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// ErrProducerNotReady 未配置 Kafka（或 Redis 降级时未启动重试链路）
var ErrProducerNotReady = errors.New("redis retry producer not ready")

// TaskProducer 重试任务的投递端，由 pkg/kafka.Producer 实现
type TaskProducer interface {
	Send(ctx context.Context, key, value []byte) error
}

var (
	globalProducer TaskProducer
	producerMu     sync.RWMutex
)

// SetGlobalProducer 设置全局投递端，传 nil 关闭重试链路
func SetGlobalProducer(p TaskProducer) {
	producerMu.Lock()
	globalProducer = p
	producerMu.Unlock()
}

func getProducer() TaskProducer {
	producerMu.RLock()
	defer producerMu.RUnlock()
	return globalProducer
}

// SendRedisTask 序列化任务并投递到重试队列
func SendRedisTask(ctx context.Context, task RedisTask) error {
	p := getProducer()
	if p == nil {
		return ErrProducerNotReady
	}
	return publish(ctx, p, task)
}

func publish(ctx context.Context, p TaskProducer, task RedisTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.Send(ctx, []byte(strings.Join(task.Keys(), ",")), data)
}
