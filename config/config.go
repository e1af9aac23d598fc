package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 MSG_DATABASE_DSN 覆盖 database.dsn
const EnvPrefix = "MSG"

// AppConfig 消息服务的完整配置
type AppConfig struct {
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Logger    LoggerConfig    `json:"logger" yaml:"logger" mapstructure:"logger"`
	Database  DatabaseConfig  `json:"database" yaml:"database" mapstructure:"database"`
	Redis     RedisConfig     `json:"redis" yaml:"redis" mapstructure:"redis"`
	Kafka     KafkaConfig     `json:"kafka" yaml:"kafka" mapstructure:"kafka"`
	Async     AsyncConfig     `json:"async" yaml:"async" mapstructure:"async"`
	Auth      AuthConfig      `json:"auth" yaml:"auth" mapstructure:"auth"`
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
}

// Default 汇总各模块默认配置
func Default() AppConfig {
	return AppConfig{
		Server:    DefaultServerConfig(),
		Logger:    DefaultLoggerConfig(),
		Database:  DefaultDatabaseConfig(),
		Redis:     DefaultRedisConfig(),
		Kafka:     DefaultKafkaConfig(),
		Async:     DefaultAsyncConfig(),
		Auth:      DefaultAuthConfig(),
		RateLimit: DefaultRateLimitConfig(),
	}
}

// Load 按 默认值 <- 配置文件 <- 环境变量 的顺序加载配置。
// path 为空时跳过配置文件；当前目录存在 .env 时先载入进程环境。
func Load(path string) (AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()

	// 1. 默认值作为最底层
	defaults, err := toMap(Default())
	if err != nil {
		return AppConfig{}, fmt.Errorf("encode default config: %w", err)
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return AppConfig{}, fmt.Errorf("merge default config: %w", err)
	}

	// 2. 配置文件（yaml/json/toml 由扩展名决定）
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// 3. 环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 校验启动必需项
func (c AppConfig) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

func toMap(cfg AppConfig) (map[string]any, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
