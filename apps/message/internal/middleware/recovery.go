package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"MarketServer/consts"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// GinRecovery 捕获 handler panic，记录堆栈并返回统一的 500 响应
func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(NewContextWithGin(c), "请求处理 panic",
					logger.String("path", c.Request.URL.Path),
					logger.String("panic", fmt.Sprint(r)),
					logger.String("stack", string(debug.Stack())),
				)
				if !c.Writer.Written() {
					result.Abort(c, http.StatusInternalServerError, consts.CodeInternalError)
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
