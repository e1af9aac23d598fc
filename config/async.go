package config

import "time"

// AsyncConfig 协程池配置。
// 说明：消息服务只用它做缓存失效、缓存回填这类旁路任务，不参与主流程。
type AsyncConfig struct {
	PoolSize         int           `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`                         // 协程池容量
	MaxBlockingTasks int           `json:"maxBlockingTasks" yaml:"maxBlockingTasks" mapstructure:"maxBlockingTasks"` // 最大阻塞任务数（0 表示不限制）
	ExpiryDuration   time.Duration `json:"expiryDuration" yaml:"expiryDuration" mapstructure:"expiryDuration"`       // 空闲 worker 过期时间
	Nonblocking      bool          `json:"nonblocking" yaml:"nonblocking" mapstructure:"nonblocking"`                // 是否非阻塞提交
	ReleaseTimeout   time.Duration `json:"releaseTimeout" yaml:"releaseTimeout" mapstructure:"releaseTimeout"`       // 优雅释放等待时间
	TaskTimeout      time.Duration `json:"taskTimeout" yaml:"taskTimeout" mapstructure:"taskTimeout"`                // 单个旁路任务超时
}

// DefaultAsyncConfig 返回本地开发的默认配置。
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		PoolSize:         128,
		MaxBlockingTasks: 1024,
		ExpiryDuration:   10 * time.Second,
		Nonblocking:      true,
		ReleaseTimeout:   5 * time.Second,
		TaskTimeout:      3 * time.Second,
	}
}
