package repository

import (
	"context"
	"strings"
	"time"

	"MarketServer/model"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// flagRepositoryImpl 举报数据访问层实现
type flagRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// NewFlagRepository 创建举报仓储实例
func NewFlagRepository(db *gorm.DB) IFlagRepository {
	return &flagRepositoryImpl{db: db, now: defaultNow}
}

// Flag 举报消息。
// 事务内对消息行加锁（MySQL/Postgres 生效），同一消息的举报串行执行，
// 保证同一用户对同一消息最多一条未处理举报。
func (r *flagRepositoryImpl) Flag(ctx context.Context, messageID, flaggedBy int64, reason string) (*model.MessageFlag, bool, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = model.DefaultFlagReason
	}

	var (
		result  *model.MessageFlag
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg model.Message
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "thread_id", "sender_id").
			Take(&msg, messageID).Error
		if err != nil {
			return err
		}

		// 举报自己的消息：静默忽略
		if msg.SentBy(flaggedBy) {
			return nil
		}

		var existing int64
		err = tx.Model(&model.MessageFlag{}).
			Where("message_id = ? AND flagged_by = ? AND resolved = ?", messageID, flaggedBy, false).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		flag := &model.MessageFlag{
			Id:        util.NextID(),
			MessageId: messageID,
			FlaggedBy: flaggedBy,
			Reason:    reason,
			Resolved:  false,
			CreatedAt: r.now(),
		}
		if err := tx.Omit(clause.Associations).Create(flag).Error; err != nil {
			return err
		}
		result = flag
		created = true
		return nil
	})
	if err != nil {
		return nil, false, WrapDBError(err)
	}
	return result, created, nil
}

// Resolve 只处理指定的一条举报，同一消息的其他举报不受影响
func (r *flagRepositoryImpl) Resolve(ctx context.Context, flagID int64) (*model.MessageFlag, error) {
	var flag model.MessageFlag
	if err := r.db.WithContext(ctx).Take(&flag, flagID).Error; err != nil {
		return nil, WrapDBError(err)
	}
	if flag.Resolved {
		return &flag, nil
	}

	now := r.now()
	err := r.db.WithContext(ctx).
		Model(&model.MessageFlag{}).
		Where("id = ?", flagID).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": now}).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	flag.Resolved = true
	flag.ResolvedAt = &now

	logger.Info(ctx, "消息举报已处理",
		logger.Int64("flag_id", flag.Id),
		logger.Int64("message_id", flag.MessageId),
	)
	return &flag, nil
}

// ListFlags 举报列表，onlyUnresolved 为 true 时只返回未处理的
func (r *flagRepositoryImpl) ListFlags(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.MessageFlag{})
		if onlyUnresolved {
			q = q.Where("resolved = ?", false)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, WrapDBError(err)
	}
	if total == 0 {
		return []*model.MessageFlag{}, 0, nil
	}

	var flags []*model.MessageFlag
	err := base().
		Preload("Flagger").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&flags).Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}
	return flags, total, nil
}
