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

// MessageHandler 私信处理器
type MessageHandler struct {
	messagingService service.IMessagingService
}

// NewMessageHandler 创建私信处理器
func NewMessageHandler(messagingService service.IMessagingService) *MessageHandler {
	return &MessageHandler{messagingService: messagingService}
}

// Inbox 收件箱接口
// @Summary 收件箱
// @Description 当前用户参与的全部会话，按创建时间倒序，附带未读数
// @Tags 私信接口
// @Produce json
// @Success 200 {object} dto.InboxResponse
// @Router /api/v1/auth/messages/inbox [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	entries, err := h.messagingService.Inbox(ctx, actor.Id)
	if err != nil {
		failWithError(c, ctx, "查询收件箱服务内部错误", err)
		return
	}

	result.Success(c, converter.InboxToResponse(entries))
}

// UnreadCount 未读总数接口
// @Summary 未读总数
// @Description 收件箱角标，所有会话未读数之和
// @Tags 私信接口
// @Produce json
// @Success 200 {object} dto.UnreadCountResponse
// @Router /api/v1/auth/messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	total, err := h.messagingService.UnreadTotal(ctx, actor.Id)
	if err != nil {
		failWithError(c, ctx, "查询未读总数服务内部错误", err)
		return
	}

	result.Success(c, &dto.UnreadCountResponse{Total: total})
}

// Compose 打开与某用户的私信页
// @Summary 打开私信
// @Description 已有会话返回消息，否则返回草稿视图，不创建会话
// @Tags 私信接口
// @Produce json
// @Param userId path int true "对方用户id"
// @Success 200 {object} dto.ConversationResponse
// @Router /api/v1/auth/messages/compose/{userId} [get]
func (h *MessageHandler) Compose(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	otherID, ok := parseIDParam(c, "userId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	view, err := h.messagingService.Compose(ctx, actor.Id, otherID)
	if err != nil {
		failWithError(c, ctx, "打开私信服务内部错误", err)
		return
	}

	result.Success(c, converter.ConversationToResponse(view))
}

// SendDirect 给某用户发私信
// @Summary 发送私信
// @Description 会话不存在时先创建，并发首发只会产生一个会话
// @Tags 私信接口
// @Accept json
// @Produce json
// @Param userId path int true "对方用户id"
// @Param request body dto.SendMessageRequest true "消息内容"
// @Success 200 {object} dto.SendMessageResponse
// @Router /api/v1/auth/messages/compose/{userId} [post]
func (h *MessageHandler) SendDirect(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	otherID, ok := parseIDParam(c, "userId")
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	res, err := h.messagingService.SendDirect(ctx, actor.Id, otherID, req.Text)
	if err != nil {
		failWithError(c, ctx, "发送私信服务内部错误", err)
		return
	}

	result.Success(c, converter.SendResultToResponse(res, actor))
}

// OpenThread 查看会话
// @Summary 查看会话
// @Description 返回会话消息并标记已读，非成员返回会话不存在
// @Tags 私信接口
// @Produce json
// @Param threadId path int true "会话id"
// @Success 200 {object} dto.ConversationResponse
// @Router /api/v1/auth/messages/threads/{threadId} [get]
func (h *MessageHandler) OpenThread(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		result.Fail(c, nil, consts.CodeConversationNotFound)
		return
	}

	view, err := h.messagingService.OpenThread(ctx, actor.Id, threadID)
	if err != nil {
		failWithError(c, ctx, "查看会话服务内部错误", err)
		return
	}

	result.Success(c, converter.ConversationToResponse(view))
}

// SendToThread 在会话中发消息
// @Summary 回复会话
// @Tags 私信接口
// @Accept json
// @Produce json
// @Param threadId path int true "会话id"
// @Param request body dto.SendMessageRequest true "消息内容"
// @Success 200 {object} dto.SendMessageResponse
// @Router /api/v1/auth/messages/threads/{threadId}/messages [post]
func (h *MessageHandler) SendToThread(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	threadID, ok := parseIDParam(c, "threadId")
	if !ok {
		result.Fail(c, nil, consts.CodeConversationNotFound)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	res, err := h.messagingService.SendToThread(ctx, actor.Id, threadID, req.Text)
	if err != nil {
		failWithError(c, ctx, "回复会话服务内部错误", err)
		return
	}

	result.Success(c, converter.SendResultToResponse(res, actor))
}

// CreateGroup 创建群聊
// @Summary 创建群聊
// @Tags 私信接口
// @Accept json
// @Produce json
// @Param request body dto.CreateGroupRequest true "群名称与成员"
// @Success 200 {object} dto.CreateGroupResponse
// @Router /api/v1/auth/messages/groups [post]
func (h *MessageHandler) CreateGroup(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	thread, err := h.messagingService.CreateGroup(ctx, actor.Id, req.Name, req.MemberIds)
	if err != nil {
		failWithError(c, ctx, "创建群聊服务内部错误", err)
		return
	}

	result.Success(c, &dto.CreateGroupResponse{Thread: converter.ModelToThreadItem(thread)})
}
