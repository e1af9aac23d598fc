package mq

import (
	"context"
	"time"

	"MarketServer/pkg/logger"
)

// ==================== Redis 任务定义 ====================

type CommandType string

const (
	CmdSimple   CommandType = "simple"   // 单条命令，如 DEL
	CmdPipeline CommandType = "pipeline" // 多条命令，按 key 逐条执行，兼容集群跨 slot
)

// defaultMaxRetries 任务默认最多重放 3 次
const defaultMaxRetries = 3

// RedisTask 写入重试队列的消息体。
// 只有缓存失效类操作（DEL、代际 INCR）进入重试队列：重放 DEL 是幂等的，多余的 INCR 只会让一次回填作废，
// 重放过期的 SET 则可能覆盖新数据。
type RedisTask struct {
	Type CommandType `json:"type"`

	Command string        `json:"command,omitempty"`
	Args    []interface{} `json:"args,omitempty"`

	PipelineCmds []RedisCmd `json:"pipeline_cmds,omitempty"`

	// 元数据（追踪与重试控制）
	TraceID     string    `json:"trace_id,omitempty"`
	UserId      int64     `json:"user_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	OriginalErr string    `json:"original_err"`
	Source      string    `json:"source,omitempty"` // 操作来源，如 read_repo.invalidate
}

type RedisCmd struct {
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// ==================== 构造器 ====================

// BuildDelTask 构造单 key 的 DEL 任务
func BuildDelTask(key string) RedisTask {
	return RedisTask{
		Type:       CmdSimple,
		Command:    "del",
		Args:       []interface{}{key},
		Timestamp:  time.Now(),
		MaxRetries: defaultMaxRetries,
	}
}

// BuildDelPipelineTask 构造多 key 的 DEL 任务，每个 key 一条命令
func BuildDelPipelineTask(keys ...string) RedisTask {
	if len(keys) == 1 {
		return BuildDelTask(keys[0])
	}
	cmds := make([]RedisCmd, 0, len(keys))
	for _, k := range keys {
		cmds = append(cmds, RedisCmd{Command: "del", Args: []interface{}{k}})
	}
	return BuildPipelineTask(cmds...)
}

// BuildPipelineTask 构造任意命令组成的 pipeline 任务
func BuildPipelineTask(cmds ...RedisCmd) RedisTask {
	return RedisTask{
		Type:         CmdPipeline,
		PipelineCmds: cmds,
		Timestamp:    time.Now(),
		MaxRetries:   defaultMaxRetries,
	}
}

// ==================== 链式方法 ====================

// WithContext 记录 trace_id 与当前操作用户
func (t RedisTask) WithContext(ctx context.Context) RedisTask {
	if ctx == nil {
		return t
	}
	if traceID, ok := ctx.Value(logger.TraceIDKey).(string); ok {
		t.TraceID = traceID
	}
	if userId, ok := ctx.Value("user_id").(int64); ok {
		t.UserId = userId
	}
	return t
}

// WithError 记录原始错误
func (t RedisTask) WithError(err error) RedisTask {
	if err != nil {
		t.OriginalErr = err.Error()
	}
	return t
}

// WithSource 记录操作来源
func (t RedisTask) WithSource(source string) RedisTask {
	t.Source = source
	return t
}

// WithMaxRetries 设置最大重试次数
func (t RedisTask) WithMaxRetries(maxRetries int) RedisTask {
	t.MaxRetries = maxRetries
	return t
}

// Keys 返回任务涉及的 key，用作 Kafka 分区键和日志字段
func (t RedisTask) Keys() []string {
	var keys []string
	collect := func(args []interface{}) {
		if len(args) > 0 {
			if k, ok := args[0].(string); ok {
				keys = append(keys, k)
			}
		}
	}
	switch t.Type {
	case CmdPipeline:
		for _, c := range t.PipelineCmds {
			collect(c.Args)
		}
	default:
		collect(t.Args)
	}
	return keys
}
