package config

import "time"

// DatabaseConfig 数据库配置
// Driver 支持 mysql / postgres / sqlite，sqlite 仅用于本地开发。
type DatabaseConfig struct {
	Driver          string        `json:"driver" yaml:"driver" mapstructure:"driver"`
	DSN             string        `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
	Replicas        []string      `json:"replicas" yaml:"replicas" mapstructure:"replicas"` // 只读副本 DSN，为空则不启用读写分离
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns" mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns" mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime" mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" yaml:"connMaxIdleTime" mapstructure:"connMaxIdleTime"`
	SlowThreshold   time.Duration `json:"slowThreshold" yaml:"slowThreshold" mapstructure:"slowThreshold"` // 慢 SQL 阈值
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate" mapstructure:"autoMigrate"`
}

// DefaultDatabaseConfig 返回本地开发的默认配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "mysql",
		DSN:             "root:123456@tcp(127.0.0.1:3306)/market?charset=utf8mb4&parseTime=True&loc=UTC",
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		SlowThreshold:   200 * time.Millisecond,
		AutoMigrate:     true,
	}
}
