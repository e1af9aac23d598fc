package util

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"MarketServer/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 访问令牌载荷，user_id 为身份服务中的用户 id
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// ErrTokenExpired 令牌已过期
var ErrTokenExpired = errors.New("token expired")

// GenerateToken 签发 HS256 访问令牌，仅供开发工具和测试使用
func GenerateToken(cfg config.AuthConfig, userID int64, now time.Time) (string, error) {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultAuthConfig().TokenTTL
	}
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

// ParseToken 校验签名、签发方与有效期，返回载荷
func ParseToken(cfg config.AuthConfig, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
