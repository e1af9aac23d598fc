package config

import "time"

// AuthConfig 访问令牌校验配置
// 令牌由外部认证服务签发，这里只负责校验。
type AuthConfig struct {
	JWTSecret string        `json:"jwtSecret" yaml:"jwtSecret" mapstructure:"jwtSecret"`
	Issuer    string        `json:"issuer" yaml:"issuer" mapstructure:"issuer"`
	TokenTTL  time.Duration `json:"tokenTTL" yaml:"tokenTTL" mapstructure:"tokenTTL"` // 仅开发工具签发令牌时使用
}

// DefaultAuthConfig 返回本地开发的默认配置
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: "market-dev-secret",
		Issuer:    "market-auth",
		TokenTTL:  2 * time.Hour,
	}
}
