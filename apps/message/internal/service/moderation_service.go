package service

import (
	"context"
	"errors"

	"MarketServer/apps/message/internal/metrics"
	"MarketServer/apps/message/internal/repository"
	"MarketServer/consts"
	"MarketServer/model"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"
)

// moderationServiceImpl 举报与管理服务实现
type moderationServiceImpl struct {
	threadRepo  repository.IThreadRepository
	messageRepo repository.IMessageRepository
	flagRepo    repository.IFlagRepository
}

// NewModerationService 创建举报与管理服务实例
func NewModerationService(
	threadRepo repository.IThreadRepository,
	messageRepo repository.IMessageRepository,
	flagRepo repository.IFlagRepository,
) IModerationService {
	return &moderationServiceImpl{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		flagRepo:    flagRepo,
	}
}

// FlagMessage 举报消息。只有会话成员能举报，非成员与消息不存在返回同一错误码。
func (s *moderationServiceImpl) FlagMessage(ctx context.Context, actorID, messageID int64, reason string) (*FlagResult, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, bizerr.New(consts.CodeMessageNotFound)
		}
		return nil, internalError(ctx, "查询消息失败", err, logger.Int64("message_id", messageID))
	}

	ok, err := s.threadRepo.IsParticipant(ctx, msg.ThreadId, actorID)
	if err != nil {
		return nil, internalError(ctx, "校验会话成员失败", err, logger.Int64("thread_id", msg.ThreadId))
	}
	if !ok {
		return nil, bizerr.New(consts.CodeMessageNotFound)
	}

	flag, created, err := s.flagRepo.Flag(ctx, messageID, actorID, reason)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, bizerr.New(consts.CodeMessageNotFound)
		}
		return nil, internalError(ctx, "创建举报失败", err, logger.Int64("message_id", messageID))
	}
	if created {
		metrics.FlagsCreated.Inc()
		logger.Info(ctx, "消息被举报",
			logger.Int64("flag_id", flag.Id),
			logger.Int64("message_id", messageID),
			logger.Int64("flagged_by", actorID),
		)
	}
	return &FlagResult{Created: created, Flag: flag}, nil
}

// ListFlags 举报列表
func (s *moderationServiceImpl) ListFlags(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error) {
	flags, total, err := s.flagRepo.ListFlags(ctx, onlyUnresolved, page, pageSize)
	if err != nil {
		return nil, 0, internalError(ctx, "查询举报列表失败", err)
	}
	return flags, total, nil
}

// ResolveFlag 处理单条举报
func (s *moderationServiceImpl) ResolveFlag(ctx context.Context, flagID int64) (*model.MessageFlag, error) {
	flag, err := s.flagRepo.Resolve(ctx, flagID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, bizerr.New(consts.CodeFlagNotFound)
		}
		return nil, internalError(ctx, "处理举报失败", err, logger.Int64("flag_id", flagID))
	}
	return flag, nil
}

// EditMessage 管理员修改消息内容
func (s *moderationServiceImpl) EditMessage(ctx context.Context, messageID int64, text string) (*model.Message, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.UpdateText(ctx, messageID, text)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, bizerr.New(consts.CodeMessageNotFound)
		}
		return nil, internalError(ctx, "修改消息失败", err, logger.Int64("message_id", messageID))
	}
	logger.Info(ctx, "管理员修改消息", logger.Int64("message_id", messageID))
	return msg, nil
}

// DeleteMessage 管理员删除消息，举报记录一并删除
func (s *moderationServiceImpl) DeleteMessage(ctx context.Context, messageID int64) error {
	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return bizerr.New(consts.CodeMessageNotFound)
		}
		return internalError(ctx, "删除消息失败", err, logger.Int64("message_id", messageID))
	}
	logger.Info(ctx, "管理员删除消息", logger.Int64("message_id", messageID))
	return nil
}
