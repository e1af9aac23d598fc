package converter

import (
	"time"

	"MarketServer/apps/message/internal/dto"
	"MarketServer/apps/message/internal/service"
	"MarketServer/model"
)

// ==================== 用户 ====================

// ModelToUserItem 用户转 DTO，只暴露展示所需字段
func ModelToUserItem(user *model.User) *dto.UserItem {
	if user == nil {
		return nil
	}
	return &dto.UserItem{
		Id:          user.Id,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		IsStaff:     user.IsStaff,
	}
}

// ModelListToUserItems 批量转换用户
func ModelListToUserItems(users []*model.User) []*dto.UserItem {
	items := make([]*dto.UserItem, 0, len(users))
	for _, u := range users {
		items = append(items, ModelToUserItem(u))
	}
	return items
}

// ==================== 会话与消息 ====================

// ModelToThreadItem 会话转 DTO
func ModelToThreadItem(thread *model.Thread) *dto.ThreadItem {
	if thread == nil {
		return nil
	}
	return &dto.ThreadItem{
		Id:             thread.Id,
		IsGroup:        thread.IsGroup,
		Name:           thread.Name,
		ParticipantIds: thread.ParticipantIds(),
		CreatedAt:      toMillis(thread.CreatedAt),
	}
}

// ModelToMessageItem 消息转 DTO，sender 可为 nil
func ModelToMessageItem(msg *model.Message, sender *model.User) *dto.MessageItem {
	if msg == nil {
		return nil
	}
	return &dto.MessageItem{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		SenderId:  msg.SenderId,
		Sender:    ModelToUserItem(sender),
		Text:      msg.Text,
		CreatedAt: toMillis(msg.CreatedAt),
		UpdatedAt: toMillis(msg.UpdatedAt),
	}
}

// InboxToResponse 收件箱转 DTO
func InboxToResponse(entries []*service.InboxEntry) *dto.InboxResponse {
	items := make([]*dto.InboxItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, &dto.InboxItem{
			Thread:      ModelToThreadItem(e.Thread),
			Other:       ModelToUserItem(e.Other),
			UnreadCount: e.UnreadCount,
		})
	}
	return &dto.InboxResponse{Items: items}
}

// ConversationToResponse 会话视图转 DTO
func ConversationToResponse(view *service.ConversationView) *dto.ConversationResponse {
	if view == nil {
		return nil
	}
	messages := make([]*dto.MessageItem, 0, len(view.Messages))
	for _, m := range view.Messages {
		var sender *model.User
		if m.SenderId != nil {
			sender = view.Senders[*m.SenderId]
		}
		messages = append(messages, ModelToMessageItem(m, sender))
	}
	return &dto.ConversationResponse{
		Thread:   ModelToThreadItem(view.Thread),
		Other:    ModelToUserItem(view.Other),
		Title:    view.Title,
		IsDraft:  view.IsDraft(),
		Messages: messages,
	}
}

// SendResultToResponse 发送结果转 DTO，sender 为当前用户
func SendResultToResponse(res *service.SendResult, sender *model.User) *dto.SendMessageResponse {
	if res == nil {
		return nil
	}
	return &dto.SendMessageResponse{
		ThreadId:      res.ThreadId,
		ThreadCreated: res.ThreadCreated,
		Message:       ModelToMessageItem(res.Message, sender),
	}
}

// ==================== 举报 ====================

// ModelToFlagItem 举报记录转 DTO
func ModelToFlagItem(flag *model.MessageFlag) *dto.FlagItem {
	if flag == nil {
		return nil
	}
	item := &dto.FlagItem{
		Id:        flag.Id,
		MessageId: flag.MessageId,
		FlaggedBy: flag.FlaggedBy,
		Flagger:   ModelToUserItem(flag.Flagger),
		Reason:    flag.Reason,
		Resolved:  flag.Resolved,
		CreatedAt: toMillis(flag.CreatedAt),
	}
	if flag.ResolvedAt != nil {
		ms := toMillis(*flag.ResolvedAt)
		item.ResolvedAt = &ms
	}
	return item
}

// ModelListToFlagItems 批量转换举报记录
func ModelListToFlagItems(flags []*model.MessageFlag) []*dto.FlagItem {
	items := make([]*dto.FlagItem, 0, len(flags))
	for _, f := range flags {
		items = append(items, ModelToFlagItem(f))
	}
	return items
}

// FlagResultToResponse 举报结果转 DTO
func FlagResultToResponse(res *service.FlagResult) *dto.FlagMessageResponse {
	if res == nil {
		return nil
	}
	return &dto.FlagMessageResponse{Created: res.Created, Flag: ModelToFlagItem(res.Flag)}
}

// ==================== 分页 ====================

// BuildPagination 生成分页信息
func BuildPagination(page, pageSize int, total int64) *dto.PaginationInfo {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &dto.PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
