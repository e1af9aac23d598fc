package handler

import (
	"context"
	"net/http"
	"strconv"

	"MarketServer/apps/message/internal/middleware"
	"MarketServer/consts"
	"MarketServer/model"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// failWithError 业务错误码透传给客户端，其余错误记录日志后返回内部错误
func failWithError(c *gin.Context, ctx context.Context, msg string, err error) {
	code, _ := bizerr.CodeOf(err)
	if consts.IsNonServerError(code) {
		result.Fail(c, nil, code)
		return
	}

	logger.Error(ctx, msg, logger.ErrorField("error", err))
	result.Fail(c, nil, consts.CodeInternalError)
}

// parseIDParam 解析路径中的正整数 id
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// currentActor 取 ActorMiddleware 加载的用户，路由未挂载中间件时返回 401
func currentActor(c *gin.Context) (*model.User, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		result.Abort(c, http.StatusUnauthorized, consts.CodeUnauthorized)
		return nil, false
	}
	return actor, true
}
