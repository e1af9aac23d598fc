package util

import (
	"MarketServer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderXRequestID = "X-Request-ID"

// TraceLogger 生成或沿用 trace_id，写入 gin 上下文和响应头
func TraceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 上游（nginx/网关）传入的优先
		traceId := c.GetHeader(HeaderXRequestID)
		if traceId == "" {
			traceId = NewUUID()
		}

		c.Set(logger.TraceIDKey, traceId)
		c.Header(HeaderXRequestID, traceId)

		c.Next()
	}
}

// NewUUID 生成新的 UUID
func NewUUID() string {
	return uuid.New().String()
}
