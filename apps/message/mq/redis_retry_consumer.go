package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MarketServer/apps/message/internal/metrics"
	"MarketServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// messageReader kafka.Reader 的最小子集
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RedisRetryConsumer 消费重试队列，重放失败的缓存失效操作。
// 重放失败时 RetryCount+1 后重新投递，超过 MaxRetries 丢弃并记录错误日志。
type RedisRetryConsumer struct {
	reader      messageReader
	redisClient *redis.Client
	producer    TaskProducer
	backoff     time.Duration
}

// NewRedisRetryConsumer 创建重试消费者
func NewRedisRetryConsumer(reader messageReader, redisClient *redis.Client, producer TaskProducer, backoff time.Duration) *RedisRetryConsumer {
	return &RedisRetryConsumer{
		reader:      reader,
		redisClient: redisClient,
		producer:    producer,
		backoff:     backoff,
	}
}

// Start 阻塞消费直到 ctx 取消
func (c *RedisRetryConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error(ctx, "拉取 Redis 重试任务失败", logger.ErrorField("error", err))
			continue
		}

		c.HandleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "提交 Redis 重试任务 offset 失败",
				logger.ErrorField("error", err),
				logger.Int64("offset", msg.Offset),
			)
		}
	}
}

// HandleMessage 处理单条消息，所有分支都会被提交 offset，不阻塞后续消息
func (c *RedisRetryConsumer) HandleMessage(ctx context.Context, msg kafka.Message) {
	var task RedisTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		logger.Error(ctx, "Redis 重试任务反序列化失败，丢弃",
			logger.ErrorField("error", err),
			logger.Int64("offset", msg.Offset),
		)
		return
	}

	taskCtx := ctx
	if task.TraceID != "" {
		taskCtx = context.WithValue(ctx, logger.TraceIDKey, task.TraceID)
	}

	if c.backoff > 0 && task.RetryCount > 0 {
		select {
		case <-time.After(c.backoff * time.Duration(task.RetryCount)):
		case <-ctx.Done():
			return
		}
	}

	err := ExecuteRedisTask(taskCtx, c.redisClient, task)
	if err == nil {
		metrics.CacheRetries.WithLabelValues("success").Inc()
		logger.Info(taskCtx, "Redis 重试任务执行成功",
			logger.String("type", string(task.Type)),
			logger.Int("retry_count", task.RetryCount),
			logger.String("source", task.Source),
		)
		return
	}

	task.RetryCount++
	task.OriginalErr = err.Error()
	if task.RetryCount >= task.MaxRetries {
		metrics.CacheRetries.WithLabelValues("dropped").Inc()
		logger.Error(taskCtx, "Redis 重试任务超过最大重试次数，放弃",
			logger.ErrorField("error", err),
			logger.Int("retry_count", task.RetryCount),
			logger.String("source", task.Source),
			logger.Any("keys", task.Keys()),
		)
		return
	}

	if c.producer == nil {
		logger.Error(taskCtx, "Redis 重试任务无法重新投递：未配置生产者", logger.ErrorField("error", err))
		return
	}
	metrics.CacheRetries.WithLabelValues("requeue").Inc()
	if pubErr := publish(taskCtx, c.producer, task); pubErr != nil {
		logger.Error(taskCtx, "Redis 重试任务重新投递失败",
			logger.ErrorField("kafka_error", pubErr),
			logger.ErrorField("original_error", err),
		)
	}
}

// Close 关闭 reader
func (c *RedisRetryConsumer) Close() error {
	return c.reader.Close()
}

// ExecuteRedisTask 执行一条 Redis 任务
func ExecuteRedisTask(ctx context.Context, client *redis.Client, task RedisTask) error {
	if client == nil {
		return errors.New("redis client not available")
	}
	switch task.Type {
	case CmdSimple:
		if task.Command == "" {
			return fmt.Errorf("empty redis command")
		}
		return client.Do(ctx, append([]interface{}{task.Command}, task.Args...)...).Err()
	case CmdPipeline:
		if len(task.PipelineCmds) == 0 {
			return nil
		}
		pipe := client.Pipeline()
		for _, cmd := range task.PipelineCmds {
			pipe.Do(ctx, append([]interface{}{cmd.Command}, cmd.Args...)...)
		}
		_, err := pipe.Exec(ctx)
		return err
	default:
		return fmt.Errorf("unsupported redis task type %q", task.Type)
	}
}
