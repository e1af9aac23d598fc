package repository

import (
	"context"
	"time"

	"MarketServer/model"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/util"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// messageRepositoryImpl 消息数据访问层实现
type messageRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
	now         func() time.Time
}

// NewMessageRepository 创建消息仓储实例
func NewMessageRepository(db *gorm.DB, redisClient *redis.Client) IMessageRepository {
	return &messageRepositoryImpl{db: db, redisClient: redisClient, now: defaultNow}
}

// Append 追加消息，成功后失效其他成员的未读总数缓存
func (r *messageRepositoryImpl) Append(ctx context.Context, threadID, senderID int64, text string) (*model.Message, error) {
	now, err := r.nextCreatedAt(ctx, threadID, senderID, r.now())
	if err != nil {
		return nil, err
	}
	sender := senderID
	msg := &model.Message{
		Id:        util.NextID(),
		ThreadId:  threadID,
		SenderId:  &sender,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error; err != nil {
		return nil, WrapDBError(err)
	}

	recipients, err := r.participantsOf(ctx, threadID)
	if err != nil {
		// 缓存依赖 TTL 兜底，不影响发送结果
		logger.Warn(ctx, "查询会话成员失败，跳过未读缓存失效",
			logger.Int64("thread_id", threadID),
			logger.ErrorField("error", err),
		)
		return msg, nil
	}
	others := recipients[:0]
	for _, uid := range recipients {
		if uid != senderID {
			others = append(others, uid)
		}
	}
	invalidateUnreadTotals(ctx, r.redisClient, "message_repo.append", others...)
	return msg, nil
}

// nextCreatedAt 消息时间必须晚于其他成员的水位线，
// 同一毫秒内先打开会话、后收到的消息仍计为未读
func (r *messageRepositoryImpl) nextCreatedAt(ctx context.Context, threadID, senderID int64, now time.Time) (time.Time, error) {
	now = TruncateClock(now)
	var reads []model.ThreadRead
	err := r.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("thread_id = ? AND user_id <> ?", threadID, senderID).
		Order("last_read_at DESC").
		Limit(1).
		Find(&reads).Error
	if err != nil {
		return time.Time{}, WrapDBError(err)
	}
	if len(reads) > 0 && !now.After(reads[0].LastReadAt) {
		return TruncateClock(reads[0].LastReadAt).Add(time.Millisecond), nil
	}
	return now, nil
}

func (r *messageRepositoryImpl) participantsOf(ctx context.Context, threadID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ThreadParticipant{}).
		Where("thread_id = ?", threadID).
		Pluck("user_id", &ids).Error
	return ids, WrapDBError(err)
}

// ListByThread 会话消息，旧的在前
func (r *messageRepositoryImpl) ListByThread(ctx context.Context, threadID int64) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return messages, nil
}

// GetByID 查询消息
func (r *messageRepositoryImpl) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).Take(&msg, messageID).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &msg, nil
}

// CountByThread 会话消息数
func (r *messageRepositoryImpl) CountByThread(ctx context.Context, threadID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("thread_id = ?", threadID).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}
	return count, nil
}

// UpdateText 修改消息内容，不改变 created_at，排序不受影响
func (r *messageRepositoryImpl) UpdateText(ctx context.Context, messageID int64, text string) (*model.Message, error) {
	msg, err := r.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	err = r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{"text": text, "updated_at": now}).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	msg.Text = text
	msg.UpdatedAt = now
	return msg, nil
}

// Delete 硬删除消息，举报记录由外键级联删除
func (r *messageRepositoryImpl) Delete(ctx context.Context, messageID int64) error {
	msg, err := r.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&model.Message{}, messageID)
	if res.Error != nil {
		return WrapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}

	if participants, err := r.participantsOf(ctx, msg.ThreadId); err == nil {
		invalidateUnreadTotals(ctx, r.redisClient, "message_repo.delete", participants...)
	}
	return nil
}
