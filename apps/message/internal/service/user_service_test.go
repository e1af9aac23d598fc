package service

import (
	"context"
	"errors"
	"testing"

	"MarketServer/consts"
	"MarketServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceGetActor(t *testing.T) {
	initServiceTestLogger()
	repo := &fakeUserRepository{users: map[int64]*model.User{1: newUser(1, "alice", "")}}
	svc := NewUserService(repo)

	user, err := svc.GetActor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetActor(context.Background(), 2)
	requireBizCode(t, err, consts.CodeUserNotFound)

	repo.getFreshByIDFn = func(ctx context.Context, userID int64) (*model.User, error) {
		return nil, errors.New("db down")
	}
	_, err = svc.GetActor(context.Background(), 1)
	requireBizCode(t, err, consts.CodeInternalError)
}

func TestUserServiceGetActorBypassesCache(t *testing.T) {
	initServiceTestLogger()
	cached := newUser(1, "alice", "")
	suspended := newUser(1, "alice", "")
	suspended.Profile.Status = "Suspended"

	repo := &fakeUserRepository{
		getByIDFn: func(ctx context.Context, userID int64) (*model.User, error) {
			return cached, nil
		},
		getFreshByIDFn: func(ctx context.Context, userID int64) (*model.User, error) {
			return suspended, nil
		},
	}

	user, err := NewUserService(repo).GetActor(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, user.IsSuspended(), "停用状态以数据库为准")
}

func TestUserServiceLookupAndList(t *testing.T) {
	initServiceTestLogger()
	repo := &fakeUserRepository{users: map[int64]*model.User{
		1: newUser(1, "alice", ""),
		2: newUser(2, "bob", ""),
	}}
	repo.listUsersFn = func(ctx context.Context, excludeID int64, page, pageSize int) ([]*model.User, int64, error) {
		assert.Equal(t, int64(1), excludeID)
		return []*model.User{repo.users[2]}, 1, nil
	}
	svc := NewUserService(repo)

	user, err := svc.LookupUsername(context.Background(), " bob ")
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.Id)

	_, err = svc.LookupUsername(context.Background(), "nobody")
	requireBizCode(t, err, consts.CodeUserNotFound)

	_, err = svc.LookupUsername(context.Background(), "  ")
	requireBizCode(t, err, consts.CodeParamError)

	users, total, err := svc.ListUsers(context.Background(), 1, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)
}
