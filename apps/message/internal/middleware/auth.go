package middleware

import (
	"errors"
	"net/http"
	"strings"

	"MarketServer/config"
	"MarketServer/consts"
	"MarketServer/pkg/result"
	"MarketServer/pkg/util"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware JWT 认证中间件
// 令牌由外部认证服务签发，这里只校验并把 user_id 存入 Context
func JWTAuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 客户端请求错误，属于正常业务流程，不记录日志
			result.Abort(c, http.StatusUnauthorized, consts.CodeUnauthorized)
			return
		}

		// 格式: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			result.Abort(c, http.StatusUnauthorized, consts.CodeInvalidToken)
			return
		}

		claims, err := util.ParseToken(cfg, strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, util.ErrTokenExpired) {
				result.Abort(c, http.StatusUnauthorized, consts.CodeTokenExpired)
				return
			}
			result.Abort(c, http.StatusUnauthorized, consts.CodeInvalidToken)
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// GetUserID 从 Context 中获取当前登录用户 id
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
