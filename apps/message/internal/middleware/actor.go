package middleware

import (
	"net/http"

	"MarketServer/apps/message/internal/service"
	"MarketServer/consts"
	"MarketServer/model"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// ActorMiddleware 加载当前操作用户，必须在 JWTAuthMiddleware 之后使用。
// 被封禁的非管理员用户在进入业务逻辑前被拒绝。
func ActorMiddleware(userService service.IUserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			result.Abort(c, http.StatusUnauthorized, consts.CodeUnauthorized)
			return
		}

		ctx := NewContextWithGin(c)
		actor, err := userService.GetActor(ctx, userID)
		if err != nil {
			code, _ := bizerr.CodeOf(err)
			if code == consts.CodeUserNotFound {
				// 令牌有效但用户已不存在
				result.Abort(c, http.StatusUnauthorized, consts.CodeUserNotFound)
				return
			}
			logger.Error(ctx, "加载当前用户失败",
				logger.Int64("user_id", userID),
				logger.ErrorField("error", err),
			)
			result.Abort(c, http.StatusInternalServerError, consts.CodeInternalError)
			return
		}

		if actor.IsSuspended() && !actor.IsStaff {
			logger.Info(ctx, "封禁用户访问被拒绝", logger.Int64("user_id", userID))
			result.Abort(c, http.StatusForbidden, consts.CodeUserDisabled)
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// StaffOnly 仅管理员可访问，必须在 ActorMiddleware 之后使用
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.IsStaff {
			result.Abort(c, http.StatusForbidden, consts.CodePermissionDeny)
			return
		}
		c.Next()
	}
}

// GetActor 从 Context 中获取 ActorMiddleware 加载的用户
func GetActor(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextKeyActor)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*model.User)
	return actor, ok && actor != nil
}
