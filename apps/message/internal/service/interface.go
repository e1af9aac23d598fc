package service

import (
	"context"

	"MarketServer/model"
)

// ==================== 私信服务 ====================

// IMessagingService 私信业务编排。所有方法显式传入当前操作用户 actorID，
// 只通过仓储读写数据。
type IMessagingService interface {
	// Inbox 收件箱：用户参与的全部会话，按会话创建时间倒序，附带未读数
	Inbox(ctx context.Context, actorID int64) ([]*InboxEntry, error)

	// UnreadTotal 收件箱角标
	UnreadTotal(ctx context.Context, actorID int64) (int64, error)

	// Compose 打开与 otherID 的一对一会话；会话不存在时返回草稿视图，不创建会话
	Compose(ctx context.Context, actorID, otherID int64) (*ConversationView, error)

	// SendDirect 给 otherID 发私信，会话不存在时先创建
	SendDirect(ctx context.Context, actorID, otherID int64, text string) (*SendResult, error)

	// SendToThread 在已有会话中发消息，非成员视为会话不存在
	SendToThread(ctx context.Context, actorID, threadID int64, text string) (*SendResult, error)

	// OpenThread 查看会话，有消息时标记已读
	OpenThread(ctx context.Context, actorID, threadID int64) (*ConversationView, error)

	// CreateGroup 创建群聊
	CreateGroup(ctx context.Context, actorID int64, name string, memberIDs []int64) (*model.Thread, error)
}

// ==================== 举报与管理服务 ====================

// IModerationService 消息举报与管理员操作。
// 除 FlagMessage 外的方法由路由层保证调用者为管理员。
type IModerationService interface {
	// FlagMessage 举报消息，重复举报或举报自己的消息返回 Created=false
	FlagMessage(ctx context.Context, actorID, messageID int64, reason string) (*FlagResult, error)

	// ListFlags 举报列表
	ListFlags(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error)

	// ResolveFlag 处理单条举报
	ResolveFlag(ctx context.Context, flagID int64) (*model.MessageFlag, error)

	// EditMessage 修改消息内容，去除首尾空白后不能为空
	EditMessage(ctx context.Context, messageID int64, text string) (*model.Message, error)

	// DeleteMessage 删除消息
	DeleteMessage(ctx context.Context, messageID int64) error
}

// ==================== 用户目录服务 ====================

// IUserService 身份服务用户的只读视图
type IUserService interface {
	// GetActor 加载当前操作用户，不存在返回 CodeUserNotFound
	GetActor(ctx context.Context, userID int64) (*model.User, error)

	// ListUsers 用户目录（发起私信、选择群成员），不包含自己
	ListUsers(ctx context.Context, actorID int64, page, pageSize int) ([]*model.User, int64, error)

	// LookupUsername 按用户名查找用户
	LookupUsername(ctx context.Context, username string) (*model.User, error)
}

// ==================== 返回结构 ====================

// InboxEntry 收件箱条目，Other 仅一对一会话有值
type InboxEntry struct {
	Thread      *model.Thread
	Other       *model.User
	UnreadCount int64
}

// ConversationView 会话视图。草稿状态下 Thread 为 nil、没有消息。
type ConversationView struct {
	Thread   *model.Thread
	Other    *model.User
	Title    string
	Messages []*model.Message
	Senders  map[int64]*model.User
}

// IsDraft 是否为尚未创建的会话
func (v *ConversationView) IsDraft() bool {
	return v.Thread == nil
}

// SendResult 发送结果，ThreadId 用于客户端跳转
type SendResult struct {
	ThreadId      int64
	ThreadCreated bool
	Message       *model.Message
}

// FlagResult 举报结果，Created=false 表示没有产生新的举报
type FlagResult struct {
	Created bool
	Flag    *model.MessageFlag
}
