package service

import (
	"context"
	"strings"

	"MarketServer/apps/message/internal/repository"
	"MarketServer/consts"
	"MarketServer/model"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"
)

// userServiceImpl 用户目录服务实现
type userServiceImpl struct {
	userRepo repository.IUserRepository
}

// NewUserService 创建用户目录服务实例
func NewUserService(userRepo repository.IUserRepository) IUserService {
	return &userServiceImpl{userRepo: userRepo}
}

// GetActor 加载当前操作用户，每次请求查库，停用状态立即生效
func (s *userServiceImpl) GetActor(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetFreshByID(ctx, userID)
	if err != nil {
		return nil, internalError(ctx, "查询当前用户失败", err, logger.Int64("user_id", userID))
	}
	if user == nil {
		return nil, bizerr.New(consts.CodeUserNotFound)
	}
	return user, nil
}

// ListUsers 用户目录
func (s *userServiceImpl) ListUsers(ctx context.Context, actorID int64, page, pageSize int) ([]*model.User, int64, error) {
	users, total, err := s.userRepo.ListUsers(ctx, actorID, page, pageSize)
	if err != nil {
		return nil, 0, internalError(ctx, "查询用户目录失败", err)
	}
	return users, total, nil
}

// LookupUsername 按用户名查找
func (s *userServiceImpl) LookupUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, bizerr.New(consts.CodeParamError)
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, internalError(ctx, "按用户名查询用户失败", err)
	}
	if user == nil {
		return nil, bizerr.New(consts.CodeUserNotFound)
	}
	return user, nil
}
