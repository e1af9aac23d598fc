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

// ModerationHandler 举报与管理处理器
type ModerationHandler struct {
	moderationService service.IModerationService
}

// NewModerationHandler 创建举报与管理处理器
func NewModerationHandler(moderationService service.IModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// FlagMessage 举报消息
// @Summary 举报消息
// @Description 重复举报或举报自己的消息返回 created=false
// @Tags 举报接口
// @Accept json
// @Produce json
// @Param messageId path int true "消息id"
// @Param request body dto.FlagMessageRequest false "举报原因"
// @Success 200 {object} dto.FlagMessageResponse
// @Router /api/v1/auth/messages/messages/{messageId}/flags [post]
func (h *ModerationHandler) FlagMessage(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	messageID, ok := parseIDParam(c, "messageId")
	if !ok {
		result.Fail(c, nil, consts.CodeMessageNotFound)
		return
	}

	// 请求体可选
	var req dto.FlagMessageRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			result.Fail(c, nil, consts.CodeParamError)
			return
		}
	}

	res, err := h.moderationService.FlagMessage(ctx, actor.Id, messageID, req.Reason)
	if err != nil {
		failWithError(c, ctx, "举报消息服务内部错误", err)
		return
	}

	result.Success(c, converter.FlagResultToResponse(res))
}

// ListFlags 举报列表
// @Summary 举报列表
// @Description 管理员查看举报，默认只看未处理
// @Tags 管理接口
// @Produce json
// @Param unresolved query bool false "只看未处理"
// @Param page query int false "页码"
// @Param pageSize query int false "每页大小"
// @Success 200 {object} dto.ListFlagsResponse
// @Router /api/v1/auth/admin/message-flags [get]
func (h *ModerationHandler) ListFlags(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ListFlagsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	page, pageSize := req.Normalize()

	flags, total, err := h.moderationService.ListFlags(ctx, req.OnlyUnresolved(), page, pageSize)
	if err != nil {
		failWithError(c, ctx, "查询举报列表服务内部错误", err)
		return
	}

	result.Success(c, &dto.ListFlagsResponse{
		Items:      converter.ModelListToFlagItems(flags),
		Pagination: converter.BuildPagination(page, pageSize, total),
	})
}

// ResolveFlag 处理举报
// @Summary 处理举报
// @Tags 管理接口
// @Produce json
// @Param flagId path int true "举报id"
// @Success 200 {object} dto.FlagItem
// @Router /api/v1/auth/admin/message-flags/{flagId}/resolve [post]
func (h *ModerationHandler) ResolveFlag(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	flagID, ok := parseIDParam(c, "flagId")
	if !ok {
		result.Fail(c, nil, consts.CodeFlagNotFound)
		return
	}

	flag, err := h.moderationService.ResolveFlag(ctx, flagID)
	if err != nil {
		failWithError(c, ctx, "处理举报服务内部错误", err)
		return
	}

	result.Success(c, converter.ModelToFlagItem(flag))
}

// EditMessage 管理员修改消息
// @Summary 修改消息
// @Tags 管理接口
// @Accept json
// @Produce json
// @Param messageId path int true "消息id"
// @Param request body dto.EditMessageRequest true "新内容"
// @Success 200 {object} dto.MessageItem
// @Router /api/v1/auth/admin/messages/{messageId} [put]
func (h *ModerationHandler) EditMessage(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	messageID, ok := parseIDParam(c, "messageId")
	if !ok {
		result.Fail(c, nil, consts.CodeMessageNotFound)
		return
	}

	var req dto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	msg, err := h.moderationService.EditMessage(ctx, messageID, req.Text)
	if err != nil {
		failWithError(c, ctx, "修改消息服务内部错误", err)
		return
	}

	result.Success(c, converter.ModelToMessageItem(msg, msg.Sender))
}

// DeleteMessage 管理员删除消息
// @Summary 删除消息
// @Tags 管理接口
// @Produce json
// @Param messageId path int true "消息id"
// @Success 200
// @Router /api/v1/auth/admin/messages/{messageId} [delete]
func (h *ModerationHandler) DeleteMessage(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	messageID, ok := parseIDParam(c, "messageId")
	if !ok {
		result.Fail(c, nil, consts.CodeMessageNotFound)
		return
	}

	if err := h.moderationService.DeleteMessage(ctx, messageID); err != nil {
		failWithError(c, ctx, "删除消息服务内部错误", err)
		return
	}

	result.Success(c, nil)
}
