package middleware

import (
	"context"
	"time"

	"MarketServer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// gin.Context 中使用的 key
const (
	ContextKeyTraceID  = "trace_id"
	ContextKeyUserID   = "user_id"
	ContextKeyClientIP = "client_ip"
	ContextKeyActor    = "actor"
)

// NewContextWithGin 从 gin.Context 创建包含 trace_id、user_id、client_ip 的 context.Context
// 用于将请求信息传递到 service 和日志系统
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceId, exists := c.Get(ContextKeyTraceID); exists {
		ctx = context.WithValue(ctx, logger.TraceIDKey, traceId)
	}
	if userID, exists := c.Get(ContextKeyUserID); exists {
		ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	}
	if clientIP, exists := c.Get(ContextKeyClientIP); exists {
		ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	}
	return ctx
}

// GinLogger 访问日志
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		clientIP := c.GetString(ContextKeyClientIP)
		if clientIP == "" {
			clientIP = c.ClientIP()
		}
		ctx := NewContextWithGin(c)

		logger.Debug(ctx, "请求开始",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.String("ip", clientIP),
		)

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()

		// 只记录服务端错误(5xx)和慢请求(>2s)
		if status >= 500 || cost > 2*time.Second {
			logger.Warn(NewContextWithGin(c), "慢请求或服务端错误",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("query", query),
				logger.String("ip", clientIP),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
		}
	}
}
