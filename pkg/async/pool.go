package async

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"MarketServer/config"
	"MarketServer/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

var (
	global   *ants.Pool
	globalMu sync.RWMutex
	cfgCopy  = config.DefaultAsyncConfig()
)

// ContextPropagator 从父 ctx 提取需要透传给异步任务的字段（trace_id 等）。
// 异步任务不能继承请求 ctx 的取消信号，否则请求结束后缓存失效会被中断。
var ContextPropagator = func(parent context.Context) context.Context {
	ctx := context.Background()
	if traceId, ok := parent.Value(logger.TraceIDKey).(string); ok {
		ctx = context.WithValue(ctx, logger.TraceIDKey, traceId)
	}
	return ctx
}

// ErrNotInitialized 协程池尚未初始化
var ErrNotInitialized = errors.New("async pool not initialized")

// Pool 返回全局协程池（未初始化时为 nil）
func Pool() *ants.Pool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Build 根据配置创建协程池实例
func Build(cfg config.AsyncConfig) (*ants.Pool, error) {
	opts := []ants.Option{
		ants.WithMaxBlockingTasks(cfg.MaxBlockingTasks),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithNonblocking(cfg.Nonblocking),
		ants.WithPanicHandler(func(p any) {
			logger.Error(context.Background(), "异步任务 panic",
				logger.Any("panic", p),
				logger.String("stack", string(debug.Stack())),
			)
		}),
	}
	return ants.NewPool(cfg.PoolSize, opts...)
}

// Init 初始化全局协程池，重复调用无副作用
func Init(cfg config.AsyncConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil
	}
	p, err := Build(cfg)
	if err != nil {
		return err
	}
	global = p
	cfgCopy = cfg
	return nil
}

// Submit 将任务投递到全局协程池
func Submit(task func()) error {
	p := Pool()
	if p == nil {
		return ErrNotInitialized
	}
	return p.Submit(task)
}

// Release 释放协程池，等待已提交任务完成
func Release() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil
	}
	var err error
	if cfgCopy.ReleaseTimeout > 0 {
		err = global.ReleaseTimeout(cfgCopy.ReleaseTimeout)
	} else {
		global.Release()
	}
	global = nil
	return err
}

// RunSafe 在协程池中执行旁路任务：带超时、recover、trace 透传。
// timeout<=0 时使用配置的 TaskTimeout。协程池未初始化时同步执行（测试、脚本场景）。
// 协程池满（非阻塞模式）时丢弃任务并记录日志，旁路任务不能拖慢主流程。
func RunSafe(ctx context.Context, task func(ctx context.Context), timeout time.Duration) {
	if task == nil {
		return
	}
	if timeout <= 0 {
		timeout = cfgCopy.TaskTimeout
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	baseCtx := context.Background()
	if ctx != nil && ContextPropagator != nil {
		baseCtx = ContextPropagator(ctx)
	}

	run := func() {
		runCtx, cancel := context.WithTimeout(baseCtx, timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(runCtx, "异步任务 panic",
					logger.Any("panic", r),
					logger.String("stack", string(debug.Stack())),
				)
			}
		}()

		task(runCtx)

		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logger.Warn(runCtx, "异步任务超时", logger.Duration("timeout", timeout))
		}
	}

	err := Submit(run)
	if errors.Is(err, ErrNotInitialized) {
		run()
		return
	}
	if err != nil {
		logger.Error(baseCtx, "异步任务投递失败",
			logger.ErrorField("error", err),
			logger.Duration("timeout", timeout),
		)
	}
}
