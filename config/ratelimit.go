package config

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Rate           float64 `json:"rate" yaml:"rate" mapstructure:"rate"`                               // 每秒产生的令牌数
	Burst          int     `json:"burst" yaml:"burst" mapstructure:"burst"`                            // 令牌桶容量
	LocalCacheSize int     `json:"localCacheSize" yaml:"localCacheSize" mapstructure:"localCacheSize"` // Redis 不可用时本地限流器最多保留的 key 数
}

// DefaultRateLimitConfig 默认每个用户 10 req/s，突发 20
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        true,
		Rate:           10,
		Burst:          20,
		LocalCacheSize: 10000,
	}
}
