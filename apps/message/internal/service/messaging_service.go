package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"MarketServer/apps/message/internal/metrics"
	"MarketServer/apps/message/internal/repository"
	"MarketServer/consts"
	"MarketServer/model"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"
)

const (
	// groupNameMaxLen 群名称最大字符数
	groupNameMaxLen = 120
	// defaultGroupTitle 群聊没有名称时的标题
	defaultGroupTitle = "Group chat"
	// defaultDirectTitle 一对一会话对方已不存在时的标题
	defaultDirectTitle = "Conversation"
)

// messagingServiceImpl 私信服务实现
type messagingServiceImpl struct {
	threadRepo  repository.IThreadRepository
	messageRepo repository.IMessageRepository
	readRepo    repository.IReadRepository
	userRepo    repository.IUserRepository
	now         func() time.Time
}

// NewMessagingService 创建私信服务实例
func NewMessagingService(
	threadRepo repository.IThreadRepository,
	messageRepo repository.IMessageRepository,
	readRepo repository.IReadRepository,
	userRepo repository.IUserRepository,
) IMessagingService {
	return &messagingServiceImpl{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		readRepo:    readRepo,
		userRepo:    userRepo,
		now:         func() time.Time { return repository.TruncateClock(time.Now()) },
	}
}

// Inbox 收件箱
func (s *messagingServiceImpl) Inbox(ctx context.Context, actorID int64) ([]*InboxEntry, error) {
	threads, err := s.threadRepo.ListForUser(ctx, actorID)
	if err != nil {
		return nil, internalError(ctx, "查询会话列表失败", err, logger.Int64("user_id", actorID))
	}

	entries := make([]*InboxEntry, 0, len(threads))
	otherIDs := make([]int64, 0, len(threads))
	for _, thread := range threads {
		unread, err := s.readRepo.UnreadCount(ctx, thread.Id, actorID)
		if err != nil {
			return nil, internalError(ctx, "查询会话未读数失败", err, logger.Int64("thread_id", thread.Id))
		}
		entries = append(entries, &InboxEntry{Thread: thread, UnreadCount: unread})
		if !thread.IsGroup {
			if otherID, ok := otherParticipant(thread, actorID); ok {
				otherIDs = append(otherIDs, otherID)
			}
		}
	}

	if len(otherIDs) == 0 {
		return entries, nil
	}
	users, err := s.userRepo.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, internalError(ctx, "批量查询会话对方信息失败", err)
	}
	for _, entry := range entries {
		if entry.Thread.IsGroup {
			continue
		}
		if otherID, ok := otherParticipant(entry.Thread, actorID); ok {
			entry.Other = users[otherID]
		}
	}
	return entries, nil
}

// UnreadTotal 收件箱角标
func (s *messagingServiceImpl) UnreadTotal(ctx context.Context, actorID int64) (int64, error) {
	total, err := s.readRepo.UnreadTotal(ctx, actorID)
	if err != nil {
		return 0, internalError(ctx, "查询未读总数失败", err, logger.Int64("user_id", actorID))
	}
	return total, nil
}

// Compose 一对一会话预览，只读，不创建会话
func (s *messagingServiceImpl) Compose(ctx context.Context, actorID, otherID int64) (*ConversationView, error) {
	if actorID == otherID {
		return nil, bizerr.New(consts.CodeCannotMessageSelf)
	}
	other, err := s.loadUser(ctx, otherID)
	if err != nil {
		return nil, err
	}

	thread, err := s.threadRepo.FindDirect(ctx, actorID, otherID)
	if err != nil {
		return nil, internalError(ctx, "查询一对一会话失败", err,
			logger.Int64("user_id", actorID),
			logger.Int64("other_id", otherID),
		)
	}

	view := &ConversationView{Thread: thread, Other: other, Title: other.DisplayName()}
	if thread == nil {
		return view, nil
	}

	messages, senders, err := s.loadMessages(ctx, thread)
	if err != nil {
		return nil, err
	}
	view.Messages = messages
	view.Senders = senders
	return view, nil
}

// SendDirect 给 otherID 发私信，首次联系时创建会话
func (s *messagingServiceImpl) SendDirect(ctx context.Context, actorID, otherID int64, text string) (*SendResult, error) {
	if actorID == otherID {
		return nil, bizerr.New(consts.CodeCannotMessageSelf)
	}
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, otherID); err != nil {
		return nil, err
	}

	thread, created, err := s.threadRepo.GetOrCreateDirect(ctx, actorID, otherID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidOperation) {
			return nil, bizerr.New(consts.CodeCannotMessageSelf)
		}
		return nil, internalError(ctx, "获取或创建一对一会话失败", err,
			logger.Int64("user_id", actorID),
			logger.Int64("other_id", otherID),
		)
	}
	if created {
		metrics.ThreadsCreated.WithLabelValues("direct").Inc()
		logger.Info(ctx, "创建一对一会话",
			logger.Int64("thread_id", thread.Id),
			logger.Int64("user_id", actorID),
			logger.Int64("other_id", otherID),
		)
	}

	msg, err := s.append(ctx, thread.Id, actorID, text)
	if err != nil {
		return nil, err
	}
	return &SendResult{ThreadId: thread.Id, ThreadCreated: created, Message: msg}, nil
}

// SendToThread 在已有会话中发消息
func (s *messagingServiceImpl) SendToThread(ctx context.Context, actorID, threadID int64, text string) (*SendResult, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	ok, err := s.threadRepo.IsParticipant(ctx, threadID, actorID)
	if err != nil {
		return nil, internalError(ctx, "校验会话成员失败", err, logger.Int64("thread_id", threadID))
	}
	if !ok {
		return nil, bizerr.New(consts.CodeConversationNotFound)
	}

	msg, err := s.append(ctx, threadID, actorID, text)
	if err != nil {
		return nil, err
	}
	return &SendResult{ThreadId: threadID, Message: msg}, nil
}

// OpenThread 查看会话。非成员与会话不存在返回同一个错误码，不暴露会话是否存在。
func (s *messagingServiceImpl) OpenThread(ctx context.Context, actorID, threadID int64) (*ConversationView, error) {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, bizerr.New(consts.CodeConversationNotFound)
		}
		return nil, internalError(ctx, "查询会话失败", err, logger.Int64("thread_id", threadID))
	}
	if !thread.HasParticipant(actorID) {
		return nil, bizerr.New(consts.CodeConversationNotFound)
	}

	messages, senders, err := s.loadMessages(ctx, thread)
	if err != nil {
		return nil, err
	}

	view := &ConversationView{Thread: thread, Messages: messages, Senders: senders}
	if thread.IsGroup {
		view.Title = strings.TrimSpace(thread.Name)
		if view.Title == "" {
			view.Title = defaultGroupTitle
		}
	} else {
		view.Title = defaultDirectTitle
		if otherID, ok := otherParticipant(thread, actorID); ok {
			if other := senders[otherID]; other != nil {
				view.Other = other
				view.Title = other.DisplayName()
			}
		}
	}

	if len(messages) > 0 {
		if err := s.readRepo.MarkRead(ctx, thread.Id, actorID, s.now()); err != nil {
			return nil, internalError(ctx, "标记会话已读失败", err, logger.Int64("thread_id", thread.Id))
		}
	}
	return view, nil
}

// CreateGroup 创建群聊，成员必须都是存在的用户
func (s *messagingServiceImpl) CreateGroup(ctx context.Context, actorID int64, name string, memberIDs []int64) (*model.Thread, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > groupNameMaxLen {
		return nil, bizerr.New(consts.CodeGroupNameInvalid)
	}

	seen := make(map[int64]struct{}, len(memberIDs))
	members := make([]int64, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == actorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) == 0 {
		return nil, bizerr.New(consts.CodeGroupMembersEmpty)
	}

	users, err := s.userRepo.GetByIDs(ctx, members)
	if err != nil {
		return nil, internalError(ctx, "批量查询群成员失败", err)
	}
	for _, id := range members {
		if users[id] == nil {
			return nil, bizerr.New(consts.CodeUserNotFound)
		}
	}

	thread, err := s.threadRepo.CreateGroup(ctx, name, actorID, members)
	if err != nil {
		return nil, internalError(ctx, "创建群聊失败", err, logger.Int64("user_id", actorID))
	}
	metrics.ThreadsCreated.WithLabelValues("group").Inc()
	logger.Info(ctx, "创建群聊",
		logger.Int64("thread_id", thread.Id),
		logger.Int64("user_id", actorID),
		logger.Int("member_count", len(members)),
	)
	return thread, nil
}

// ==================== 内部方法 ====================

func (s *messagingServiceImpl) append(ctx context.Context, threadID, senderID int64, text string) (*model.Message, error) {
	msg, err := s.messageRepo.Append(ctx, threadID, senderID, text)
	if err != nil {
		return nil, internalError(ctx, "发送消息失败", err, logger.Int64("thread_id", threadID))
	}
	metrics.MessagesSent.Inc()
	return msg, nil
}

// loadUser 查询用户，不存在返回 CodeUserNotFound
func (s *messagingServiceImpl) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, internalError(ctx, "查询用户失败", err, logger.Int64("target_id", userID))
	}
	if user == nil {
		return nil, bizerr.New(consts.CodeUserNotFound)
	}
	return user, nil
}

// loadMessages 会话消息及相关用户（成员与发送者）
func (s *messagingServiceImpl) loadMessages(ctx context.Context, thread *model.Thread) ([]*model.Message, map[int64]*model.User, error) {
	messages, err := s.messageRepo.ListByThread(ctx, thread.Id)
	if err != nil {
		return nil, nil, internalError(ctx, "查询会话消息失败", err, logger.Int64("thread_id", thread.Id))
	}

	ids := thread.ParticipantIds()
	for _, msg := range messages {
		if msg.SenderId != nil {
			ids = append(ids, *msg.SenderId)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, internalError(ctx, "批量查询会话用户失败", err, logger.Int64("thread_id", thread.Id))
	}
	return messages, users, nil
}

// otherParticipant 第一个不是 actorID 的成员
func otherParticipant(thread *model.Thread, actorID int64) (int64, bool) {
	for _, p := range thread.Participants {
		if p.UserId != actorID {
			return p.UserId, true
		}
	}
	return 0, false
}

// normalizeText 去除首尾空白，空内容返回 CodeMessageEmpty
func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", bizerr.New(consts.CodeMessageEmpty)
	}
	return text, nil
}
