package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerXRealIP       = "X-Real-IP"
	headerXForwardedFor = "X-Forwarded-For"
)

// GetClientIP 获取客户端真实 IP
// 优先级：X-Real-IP > X-Forwarded-For 第一跳 > RemoteAddr
func GetClientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader(headerXRealIP)); ip != "" && net.ParseIP(ip) != nil {
		return ip
	}

	if xff := c.GetHeader(headerXForwardedFor); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx != -1 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}

	return c.ClientIP()
}

// ClientIPMiddleware 将客户端 IP 写入 gin.Context
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClientIP, GetClientIP(c))
		c.Next()
	}
}
