package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketServer/model"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// threadRepositoryImpl 会话数据访问层实现
type threadRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// NewThreadRepository 创建会话仓储实例
func NewThreadRepository(db *gorm.DB) IThreadRepository {
	return &threadRepositoryImpl{db: db, now: defaultNow}
}

// primary 强制走主库，避免读写分离时读到副本的旧数据
func (r *threadRepositoryImpl) primary(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(dbresolver.Write)
}

func preloadParticipants(db *gorm.DB) *gorm.DB {
	return db.Order("joined_at ASC, user_id ASC")
}

// findByPairKey 按 pair_key 查一对一会话，不存在返回 nil, nil
func findByPairKey(db *gorm.DB, pairKey string) (*model.Thread, error) {
	var thread model.Thread
	err := db.Preload("Participants", preloadParticipants).
		Where("pair_key = ? AND is_group = ?", pairKey, false).
		Take(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &thread, nil
}

// GetOrCreateDirect 获取或创建一对一会话
// 1. pair_key 精确匹配
// 2. 存量会话（两名成员、pair_key 为空）回填 pair_key
// 3. 事务内二次检查后创建
// 唯一索引冲突说明并发请求已抢先写入，重新读取胜者的会话返回
func (r *threadRepositoryImpl) GetOrCreateDirect(ctx context.Context, userA, userB int64) (*model.Thread, bool, error) {
	if userA == userB {
		return nil, false, ErrInvalidOperation
	}
	pairKey := model.PairKeyOf(userA, userB)

	// ==================== 1. pair_key 快速路径 ====================
	thread, err := findByPairKey(r.primary(ctx), pairKey)
	if err != nil {
		return nil, false, err
	}
	if thread != nil {
		return thread, false, nil
	}

	// ==================== 2. 存量会话回填 ====================
	thread, err = r.backfillLegacy(ctx, userA, userB, pairKey)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return r.loadWinner(ctx, pairKey)
		}
		return nil, false, err
	}
	if thread != nil {
		return thread, false, nil
	}

	// ==================== 3. 事务内创建 ====================
	thread, created, err := r.createDirect(ctx, userA, userB, pairKey)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return r.loadWinner(ctx, pairKey)
		}
		return nil, false, err
	}
	return thread, created, nil
}

// loadWinner 唯一键冲突后读取并发请求创建或回填的会话
func (r *threadRepositoryImpl) loadWinner(ctx context.Context, pairKey string) (*model.Thread, bool, error) {
	thread, err := findByPairKey(r.primary(ctx), pairKey)
	if err != nil {
		return nil, false, err
	}
	if thread == nil {
		return nil, false, fmt.Errorf("%w: pair_key %s conflicted but no thread found", ErrDatabase, pairKey)
	}
	logger.Info(ctx, "一对一会话并发创建，使用已存在的会话",
		logger.String("pair_key", pairKey),
		logger.Int64("thread_id", thread.Id),
	)
	return thread, false, nil
}

// findLegacy 查找两名成员恰好为 userA、userB 且未回填 pair_key 的一对一会话
func (r *threadRepositoryImpl) findLegacy(db *gorm.DB, userA, userB int64) (*model.Thread, error) {
	pairThreads := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.ThreadParticipant{}).
		Select("thread_id").
		Group("thread_id").
		Having("COUNT(*) = 2 AND SUM(CASE WHEN user_id IN ? THEN 1 ELSE 0 END) = 2", []int64{userA, userB})

	var thread model.Thread
	err := db.Where("is_group = ? AND pair_key IS NULL", false).
		Where("id IN (?)", pairThreads).
		Order("created_at ASC, id ASC").
		Take(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &thread, nil
}

// backfillLegacy 回填存量会话的 pair_key，无存量会话返回 nil, nil
func (r *threadRepositoryImpl) backfillLegacy(ctx context.Context, userA, userB int64, pairKey string) (*model.Thread, error) {
	legacy, err := r.findLegacy(r.primary(ctx), userA, userB)
	if err != nil || legacy == nil {
		return nil, err
	}

	var (
		result *model.Thread
		raced  bool
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 二次检查：并发请求可能已创建带 key 的会话
		keyed, err := findByPairKey(tx, pairKey)
		if err != nil {
			return err
		}
		if keyed != nil {
			result = keyed
			return nil
		}

		res := tx.Model(&model.Thread{}).
			Where("id = ? AND pair_key IS NULL", legacy.Id).
			Update("pair_key", pairKey)
		if res.Error != nil {
			return WrapDBError(res.Error)
		}
		if res.RowsAffected == 0 {
			raced = true
			return nil
		}
		logger.Info(ctx, "存量一对一会话回填 pair_key",
			logger.Int64("thread_id", legacy.Id),
			logger.String("pair_key", pairKey),
		)

		var thread model.Thread
		if err := tx.Preload("Participants", preloadParticipants).Take(&thread, legacy.Id).Error; err != nil {
			return WrapDBError(err)
		}
		result = &thread
		return nil
	})
	if err != nil {
		return nil, WrapDBError(err)
	}

	// 并发回填已先提交：事务内的快照（REPEATABLE READ）可能看不到对方写入的 pair_key，提交后从主库重读
	if raced {
		var thread model.Thread
		err := r.primary(ctx).Preload("Participants", preloadParticipants).Take(&thread, legacy.Id).Error
		if err != nil {
			return nil, WrapDBError(err)
		}
		return &thread, nil
	}
	return result, nil
}

// createDirect 事务内二次检查后创建一对一会话
func (r *threadRepositoryImpl) createDirect(ctx context.Context, userA, userB int64, pairKey string) (*model.Thread, bool, error) {
	var (
		result  *model.Thread
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keyed, err := findByPairKey(tx, pairKey)
		if err != nil {
			return err
		}
		if keyed != nil {
			result = keyed
			return nil
		}

		now := r.now()
		key := pairKey
		thread := &model.Thread{
			Id:        util.NextID(),
			PairKey:   &key,
			IsGroup:   false,
			CreatedAt: now,
		}
		if err := tx.Omit(clause.Associations).Create(thread).Error; err != nil {
			return WrapDBError(err)
		}

		first, second := userA, userB
		if first > second {
			first, second = second, first
		}
		thread.Participants = []model.ThreadParticipant{
			{ThreadId: thread.Id, UserId: first, JoinedAt: now},
			{ThreadId: thread.Id, UserId: second, JoinedAt: now},
		}
		if err := tx.Omit(clause.Associations).Create(&thread.Participants).Error; err != nil {
			return WrapDBError(err)
		}

		result = thread
		created = true
		return nil
	})
	if err != nil {
		return nil, false, WrapDBError(err)
	}
	return result, created, nil
}

// FindDirect 只读查询一对一会话（含存量会话），不创建、不回填
func (r *threadRepositoryImpl) FindDirect(ctx context.Context, userA, userB int64) (*model.Thread, error) {
	if userA == userB {
		return nil, ErrInvalidOperation
	}
	thread, err := findByPairKey(r.db.WithContext(ctx), model.PairKeyOf(userA, userB))
	if err != nil || thread != nil {
		return thread, err
	}
	legacy, err := r.findLegacy(r.db.WithContext(ctx), userA, userB)
	if err != nil || legacy == nil {
		return nil, err
	}
	return r.GetByID(ctx, legacy.Id)
}

// CreateGroup 创建群聊，成员写入失败时整体回滚
func (r *threadRepositoryImpl) CreateGroup(ctx context.Context, name string, creator int64, members []int64) (*model.Thread, error) {
	now := r.now()
	creatorId := creator
	thread := &model.Thread{
		Id:        util.NextID(),
		IsGroup:   true,
		Name:      name,
		CreatedBy: &creatorId,
		CreatedAt: now,
	}

	seen := make(map[int64]struct{}, len(members)+1)
	participants := make([]model.ThreadParticipant, 0, len(members)+1)
	for _, uid := range append([]int64{creator}, members...) {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		participants = append(participants, model.ThreadParticipant{ThreadId: thread.Id, UserId: uid, JoinedAt: now})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(thread).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&participants).Error
	})
	if err != nil {
		return nil, WrapDBError(err)
	}
	thread.Participants = participants
	return thread, nil
}

// GetByID 查询会话（含成员）
func (r *threadRepositoryImpl) GetByID(ctx context.Context, threadID int64) (*model.Thread, error) {
	var thread model.Thread
	err := r.db.WithContext(ctx).
		Preload("Participants", preloadParticipants).
		Take(&thread, threadID).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &thread, nil
}

// IsParticipant 判断用户是否为会话成员
func (r *threadRepositoryImpl) IsParticipant(ctx context.Context, threadID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ThreadParticipant{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	if err != nil {
		return false, WrapDBError(err)
	}
	return count > 0, nil
}

// ListParticipants 会话成员 id
func (r *threadRepositoryImpl) ListParticipants(ctx context.Context, threadID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ThreadParticipant{}).
		Where("thread_id = ?", threadID).
		Order("joined_at ASC, user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return ids, nil
}

// ListForUser 用户参与的会话，按创建时间倒序（不是最后活跃时间）
func (r *threadRepositoryImpl) ListForUser(ctx context.Context, userID int64) ([]*model.Thread, error) {
	joined := r.db.WithContext(ctx).
		Model(&model.ThreadParticipant{}).
		Select("thread_id").
		Where("user_id = ?", userID)

	var threads []*model.Thread
	err := r.db.WithContext(ctx).
		Preload("Participants", preloadParticipants).
		Where("id IN (?)", joined).
		Order("created_at DESC, id DESC").
		Find(&threads).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return threads, nil
}
