package config

import "time"

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr         string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password     string        `json:"password" yaml:"password" mapstructure:"password"`
	DB           int           `json:"db" yaml:"db" mapstructure:"db"`
	PoolSize     int           `json:"poolSize" yaml:"poolSize" mapstructure:"poolSize"`
	MinIdleConns int           `json:"minIdleConns" yaml:"minIdleConns" mapstructure:"minIdleConns"`
	DialTimeout  time.Duration `json:"dialTimeout" yaml:"dialTimeout" mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout" mapstructure:"writeTimeout"`
}

// DefaultRedisConfig 返回本地开发的默认配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "127.0.0.1:6379",
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  50 * time.Millisecond, // 快速失败，缓存不可用时降级到数据库
		WriteTimeout: 50 * time.Millisecond,
	}
}
