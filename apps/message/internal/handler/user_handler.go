package handler

import (
	"MarketServer/apps/message/internal/converter"
	"MarketServer/apps/message/internal/dto"
	"MarketServer/apps/message/internal/middleware"
	"MarketServer/apps/message/internal/service"
	"MarketServer/consts"
	"MarketServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户目录处理器
type UserHandler struct {
	userService service.IUserService
}

// NewUserHandler 创建用户目录处理器
func NewUserHandler(userService service.IUserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers 用户目录
// @Summary 用户目录
// @Description 发起私信、选择群成员时使用，不包含自己
// @Tags 用户接口
// @Produce json
// @Param page query int false "页码"
// @Param pageSize query int false "每页大小"
// @Success 200 {object} dto.ListUsersResponse
// @Router /api/v1/auth/messages/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	page, pageSize := req.Normalize()

	users, total, err := h.userService.ListUsers(ctx, actor.Id, page, pageSize)
	if err != nil {
		failWithError(c, ctx, "查询用户目录服务内部错误", err)
		return
	}

	result.Success(c, &dto.ListUsersResponse{
		Items:      converter.ModelListToUserItems(users),
		Pagination: converter.BuildPagination(page, pageSize, total),
	})
}

// LookupUser 按用户名查找
// @Summary 按用户名查找用户
// @Tags 用户接口
// @Produce json
// @Param username query string true "用户名"
// @Success 200 {object} dto.UserItem
// @Router /api/v1/auth/messages/users/lookup [get]
func (h *UserHandler) LookupUser(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.LookupUserRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	user, err := h.userService.LookupUsername(ctx, req.Username)
	if err != nil {
		failWithError(c, ctx, "按用户名查找服务内部错误", err)
		return
	}

	result.Success(c, converter.ModelToUserItem(user))
}
