package repository

import (
	"context"
	"errors"
	"fmt"

	"MarketServer/apps/message/mq"
	"MarketServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ==================== Repository 层统一错误定义 ====================

var (
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey 唯一键冲突
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDatabase 数据库操作错误
	ErrDatabase = errors.New("database error")

	// ErrRedisNil Redis Key 不存在
	ErrRedisNil = errors.New("redis: key not found")

	// ErrRedis Redis 操作错误
	ErrRedis = errors.New("redis error")

	// ErrInvalidOperation 非法操作，如和自己建立一对一会话
	ErrInvalidOperation = errors.New("invalid operation")
)

// ==================== 核心包装函数 ====================

// wrapError 按规则映射错误，未命中规则时包装默认错误并保留原始信息
func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}
	// 已包装过的错误原样返回
	if errors.Is(err, defaultErr) {
		return err
	}

	for source, target := range rules {
		if errors.Is(err, source) {
			return target
		}
	}

	return fmt.Errorf("%w: %v", defaultErr, err)
}

var (
	dbErrorRules = map[error]error{
		gorm.ErrRecordNotFound: ErrRecordNotFound,
		gorm.ErrDuplicatedKey:  ErrDuplicateKey,
		ErrRecordNotFound:      ErrRecordNotFound,
		ErrDuplicateKey:        ErrDuplicateKey,
		ErrInvalidOperation:    ErrInvalidOperation,
	}

	redisErrorRules = map[error]error{
		redis.Nil: ErrRedisNil,
	}
)

// WrapDBError 包装数据库错误
func WrapDBError(err error) error {
	return wrapError(err, dbErrorRules, ErrDatabase)
}

// WrapRedisError 包装 Redis 错误
func WrapRedisError(err error) error {
	return wrapError(err, redisErrorRules, ErrRedis)
}

// LogRedisError 记录 Redis 错误，调用方降级处理
func LogRedisError(ctx context.Context, err error) {
	logger.Error(ctx, "Redis 操作错误", logger.ErrorField("error", err))
}

// LogAndRetryRedisError 记录 Redis 错误并投递到 Kafka 重试队列。
// 只用于缓存失效（DEL）类任务。
func LogAndRetryRedisError(ctx context.Context, task mq.RedisTask, err error) {
	logger.Warn(ctx, "Redis 操作失败，发送到重试队列",
		logger.ErrorField("error", err),
		logger.String("task_type", string(task.Type)),
		logger.String("source", task.Source),
	)

	task = task.WithContext(ctx).WithError(err)

	if kafkaErr := mq.SendRedisTask(ctx, task); kafkaErr != nil {
		logger.Error(ctx, "发送 Redis 重试任务到 Kafka 失败，放弃处理",
			logger.ErrorField("kafka_error", kafkaErr),
			logger.ErrorField("original_error", err),
			logger.String("task_type", string(task.Type)),
		)
	}
}
