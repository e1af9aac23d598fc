package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"MarketServer/consts/redisKey"
	"MarketServer/model"
	"MarketServer/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// readRepositoryImpl 已读水位线数据访问层实现
type readRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewReadRepository 创建已读仓储实例
func NewReadRepository(db *gorm.DB, redisClient *redis.Client) IReadRepository {
	return &readRepositoryImpl{db: db, redisClient: redisClient}
}

// GetOrCreate 读取或创建水位线。并发创建由联合主键 + ON CONFLICT DO NOTHING 保证只有一行
func (r *readRepositoryImpl) GetOrCreate(ctx context.Context, threadID, userID int64) (*model.ThreadRead, error) {
	var read model.ThreadRead
	err := r.db.WithContext(ctx).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Take(&read).Error
	if err == nil {
		return &read, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, WrapDBError(err)
	}

	read = model.ThreadRead{
		ThreadId:   threadID,
		UserId:     userID,
		LastReadAt: model.EpochWatermark,
	}
	err = r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&read).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	// 冲突时读到的是并发写入的那一行
	var stored model.ThreadRead
	err = r.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Take(&stored).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &stored, nil
}

// MarkRead 推进水位线，只在 at 晚于当前水位线时更新
func (r *readRepositoryImpl) MarkRead(ctx context.Context, threadID, userID int64, at time.Time) error {
	if _, err := r.GetOrCreate(ctx, threadID, userID); err != nil {
		return err
	}

	at = TruncateClock(at)
	res := r.db.WithContext(ctx).
		Model(&model.ThreadRead{}).
		Where("thread_id = ? AND user_id = ? AND last_read_at < ?", threadID, userID, at).
		Update("last_read_at", at)
	if res.Error != nil {
		return WrapDBError(res.Error)
	}
	if res.RowsAffected > 0 {
		invalidateUnreadTotals(ctx, r.redisClient, "read_repo.mark_read", userID)
	}
	return nil
}

// UnreadCount 会话内他人发送（含已注销用户）且晚于水位线的消息数
func (r *readRepositoryImpl) UnreadCount(ctx context.Context, threadID, userID int64) (int64, error) {
	read, err := r.GetOrCreate(ctx, threadID, userID)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("thread_id = ?", threadID).
		Where("(sender_id IS NULL OR sender_id <> ?)", userID).
		Where("created_at > ?", read.LastReadAt).
		Count(&count).Error
	if err != nil {
		return 0, WrapDBError(err)
	}
	return count, nil
}

// UnreadTotal 收件箱角标：先读缓存，未命中时汇总全部会话的未读数并回填。
// 回填以查库前读到的代际为条件，查库期间发生的失效不会被旧值覆盖
func (r *readRepositoryImpl) UnreadTotal(ctx context.Context, userID int64) (int64, error) {
	cacheKey := rediskey.UnreadTotalKey(userID)
	genKey := rediskey.UnreadGenKey(userID)

	// ==================== 1. 查询 Redis 缓存 ====================
	canFill := r.redisClient != nil
	gen := "0"
	if canFill {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if total, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return total, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			LogRedisError(ctx, err) // 降级查库
			canFill = false
		}
	}
	if canFill {
		current, err := r.redisClient.Get(ctx, genKey).Result()
		switch {
		case err == nil:
			gen = current
		case !errors.Is(err, redis.Nil):
			LogRedisError(ctx, err)
			canFill = false
		}
	}

	// ==================== 2. 查询数据库 ====================
	// 没有水位线的会话视为全部未读
	var total int64
	err := r.db.WithContext(ctx).
		Table("message AS m").
		Joins("JOIN message_thread_participant AS p ON p.thread_id = m.thread_id AND p.user_id = ?", userID).
		Joins("LEFT JOIN message_thread_read AS r ON r.thread_id = m.thread_id AND r.user_id = ?", userID).
		Where("(m.sender_id IS NULL OR m.sender_id <> ?)", userID).
		Where("(r.last_read_at IS NULL OR m.created_at > r.last_read_at)").
		Count(&total).Error
	if err != nil {
		return 0, WrapDBError(err)
	}

	// ==================== 3. 异步回填缓存 ====================
	if canFill {
		ttl := getRandomExpireTime(rediskey.UnreadTotalTTL)
		async.RunSafe(ctx, func(runCtx context.Context) {
			err := fillUnreadTotalScript.Run(runCtx, r.redisClient,
				[]string{cacheKey, genKey}, gen, total, ttl.Milliseconds()).Err()
			if err != nil {
				LogRedisError(runCtx, err)
			}
		}, 0)
	}
	return total, nil
}
