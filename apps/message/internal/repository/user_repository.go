package repository

import (
	"context"
	"encoding/json"
	"errors"

	"MarketServer/consts/redisKey"
	"MarketServer/model"
	"MarketServer/pkg/async"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// userRepositoryImpl 用户只读数据访问层实现，用户表由身份服务维护
type userRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB, redisClient *redis.Client) IUserRepository {
	return &userRepositoryImpl{db: db, redisClient: redisClient}
}

// GetByID 查询用户（含资料）
func (r *userRepositoryImpl) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	// ==================== 1. 先从 Redis 缓存中查询 ====================
	cacheKey := rediskey.UserInfoKey(userID)
	if r.redisClient != nil {
		cachedData, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			if cachedData == emptyCacheValue {
				return nil, nil
			}
			var user model.User
			if err := json.Unmarshal([]byte(cachedData), &user); err == nil {
				return &user, nil
			}
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			LogRedisError(ctx, err) // 降级查库
		}
	}

	// ==================== 2. 缓存未命中，查询数据库并回填 ====================
	return r.GetFreshByID(ctx, userID)
}

// GetFreshByID 绕过缓存直接查库，并用查到的结果刷新缓存。
// 用户状态（停用、管理员）由身份服务修改，鉴权路径必须读最新数据
func (r *userRepositoryImpl) GetFreshByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Profile").Take(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.cacheEmpty(ctx, rediskey.UserInfoKey(userID))
			return nil, nil
		}
		return nil, WrapDBError(err)
	}

	r.cacheUsers(ctx, []*model.User{&user})
	return &user, nil
}

// GetByIDs 批量查询用户，Redis 异常时整体回源数据库
func (r *userRepositoryImpl) GetByIDs(ctx context.Context, userIDs []int64) (map[int64]*model.User, error) {
	result := make(map[int64]*model.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	// 去重，保留首次出现的顺序
	seen := make(map[int64]struct{}, len(userIDs))
	ids := make([]int64, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	missIDs := ids
	// ==================== 1. 批量查询 Redis ====================
	if r.redisClient != nil {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, rediskey.UserInfoKey(id))
		}
		cachedValues, err := r.redisClient.MGet(ctx, keys...).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			LogRedisError(ctx, err)
			cachedValues = nil
		}
		if cachedValues != nil {
			missIDs = make([]int64, 0, len(ids))
			for i, value := range cachedValues {
				raw, ok := value.(string)
				if !ok {
					missIDs = append(missIDs, ids[i])
					continue
				}
				// 空占位表示用户不存在，不回源
				if raw == emptyCacheValue {
					continue
				}
				var user model.User
				if err := json.Unmarshal([]byte(raw), &user); err != nil {
					missIDs = append(missIDs, ids[i])
					continue
				}
				result[ids[i]] = &user
			}
		}
	}

	// ==================== 2. 未命中部分回源数据库 ====================
	if len(missIDs) == 0 {
		return result, nil
	}
	var dbUsers []*model.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id IN ?", missIDs).
		Find(&dbUsers).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	for _, user := range dbUsers {
		result[user.Id] = user
	}

	// ==================== 3. 异步回填缓存 ====================
	r.cacheUsers(ctx, dbUsers)
	for _, id := range missIDs {
		if _, ok := result[id]; !ok {
			r.cacheEmpty(ctx, rediskey.UserInfoKey(id))
		}
	}
	return result, nil
}

// GetByUsername 按用户名查询，走数据库，结果回填 id 维度的缓存
func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	r.cacheUsers(ctx, []*model.User{&user})
	return &user, nil
}

// ListUsers 用户目录，按用户名升序分页
func (r *userRepositoryImpl) ListUsers(ctx context.Context, excludeID int64, page, pageSize int) ([]*model.User, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id <> ?", excludeID).Count(&total).Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}
	if total == 0 {
		return []*model.User{}, 0, nil
	}

	var users []*model.User
	err = r.db.WithContext(ctx).
		Preload("Profile").
		Where("id <> ?", excludeID).
		Order("username ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, WrapDBError(err)
	}
	return users, total, nil
}

// cacheUsers 异步写入用户缓存，TTL 带随机抖动防雪崩
func (r *userRepositoryImpl) cacheUsers(ctx context.Context, users []*model.User) {
	if r.redisClient == nil || len(users) == 0 {
		return
	}
	async.RunSafe(ctx, func(runCtx context.Context) {
		pipe := r.redisClient.Pipeline()
		for _, user := range users {
			data, err := json.Marshal(user)
			if err != nil {
				continue
			}
			pipe.Set(runCtx, rediskey.UserInfoKey(user.Id), data, getRandomExpireTime(rediskey.UserInfoTTL))
		}
		if _, err := pipe.Exec(runCtx); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// cacheEmpty 写入空值占位，防缓存穿透
func (r *userRepositoryImpl) cacheEmpty(ctx context.Context, cacheKey string) {
	if r.redisClient == nil {
		return
	}
	async.RunSafe(ctx, func(runCtx context.Context) {
		if err := r.redisClient.Set(runCtx, cacheKey, emptyCacheValue, getRandomExpireTime(rediskey.UserInfoEmptyTTL)).Err(); err != nil {
			LogRedisError(runCtx, err)
		}
	}, 0)
}
