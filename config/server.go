package config

import "time"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	MetricsAddr     string        `json:"metricsAddr" yaml:"metricsAddr" mapstructure:"metricsAddr"`
	Mode            string        `json:"mode" yaml:"mode" mapstructure:"mode"` // gin 模式: debug/release/test
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout" mapstructure:"writeTimeout"`
	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"requestTimeout" mapstructure:"requestTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout" mapstructure:"shutdownTimeout"`
	NodeID          int64         `json:"nodeId" yaml:"nodeId" mapstructure:"nodeId"` // 雪花算法节点号
}

// DefaultServerConfig 返回本地开发的默认配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            "127.0.0.1:8080",
		MetricsAddr:     ":9091",
		Mode:            "release",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		NodeID:          1,
	}
}
