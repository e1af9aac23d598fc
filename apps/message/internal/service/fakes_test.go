package service

import (
	"context"
	"sync"
	"time"

	"MarketServer/apps/message/internal/repository"
	"MarketServer/model"
	"MarketServer/pkg/logger"

	"go.uber.org/zap"
)

var serviceTestOnce sync.Once

func initServiceTestLogger() {
	serviceTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

// ==================== fakeThreadRepository ====================

type fakeThreadRepository struct {
	getOrCreateDirectFn func(ctx context.Context, userA, userB int64) (*model.Thread, bool, error)
	findDirectFn        func(ctx context.Context, userA, userB int64) (*model.Thread, error)
	createGroupFn       func(ctx context.Context, name string, creator int64, members []int64) (*model.Thread, error)
	getByIDFn           func(ctx context.Context, threadID int64) (*model.Thread, error)
	isParticipantFn     func(ctx context.Context, threadID, userID int64) (bool, error)
	listParticipantsFn  func(ctx context.Context, threadID int64) ([]int64, error)
	listForUserFn       func(ctx context.Context, userID int64) ([]*model.Thread, error)

	getOrCreateCalls int
	createGroupCalls int
}

var _ repository.IThreadRepository = (*fakeThreadRepository)(nil)

func (f *fakeThreadRepository) GetOrCreateDirect(ctx context.Context, userA, userB int64) (*model.Thread, bool, error) {
	f.getOrCreateCalls++
	if f.getOrCreateDirectFn == nil {
		return &model.Thread{Id: 1}, true, nil
	}
	return f.getOrCreateDirectFn(ctx, userA, userB)
}

func (f *fakeThreadRepository) FindDirect(ctx context.Context, userA, userB int64) (*model.Thread, error) {
	if f.findDirectFn == nil {
		return nil, nil
	}
	return f.findDirectFn(ctx, userA, userB)
}

func (f *fakeThreadRepository) CreateGroup(ctx context.Context, name string, creator int64, members []int64) (*model.Thread, error) {
	f.createGroupCalls++
	if f.createGroupFn == nil {
		return &model.Thread{Id: 1, IsGroup: true, Name: name}, nil
	}
	return f.createGroupFn(ctx, name, creator, members)
}

func (f *fakeThreadRepository) GetByID(ctx context.Context, threadID int64) (*model.Thread, error) {
	if f.getByIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, threadID)
}

func (f *fakeThreadRepository) IsParticipant(ctx context.Context, threadID, userID int64) (bool, error) {
	if f.isParticipantFn == nil {
		return false, nil
	}
	return f.isParticipantFn(ctx, threadID, userID)
}

func (f *fakeThreadRepository) ListParticipants(ctx context.Context, threadID int64) ([]int64, error) {
	if f.listParticipantsFn == nil {
		return nil, nil
	}
	return f.listParticipantsFn(ctx, threadID)
}

func (f *fakeThreadRepository) ListForUser(ctx context.Context, userID int64) ([]*model.Thread, error) {
	if f.listForUserFn == nil {
		return nil, nil
	}
	return f.listForUserFn(ctx, userID)
}

// ==================== fakeMessageRepository ====================

type fakeMessageRepository struct {
	appendFn        func(ctx context.Context, threadID, senderID int64, text string) (*model.Message, error)
	listByThreadFn  func(ctx context.Context, threadID int64) ([]*model.Message, error)
	getByIDFn       func(ctx context.Context, messageID int64) (*model.Message, error)
	countByThreadFn func(ctx context.Context, threadID int64) (int64, error)
	updateTextFn    func(ctx context.Context, messageID int64, text string) (*model.Message, error)
	deleteFn        func(ctx context.Context, messageID int64) error

	appendCalls int
	lastText    string
}

var _ repository.IMessageRepository = (*fakeMessageRepository)(nil)

func (f *fakeMessageRepository) Append(ctx context.Context, threadID, senderID int64, text string) (*model.Message, error) {
	f.appendCalls++
	f.lastText = text
	if f.appendFn == nil {
		sender := senderID
		return &model.Message{Id: 100, ThreadId: threadID, SenderId: &sender, Text: text}, nil
	}
	return f.appendFn(ctx, threadID, senderID, text)
}

func (f *fakeMessageRepository) ListByThread(ctx context.Context, threadID int64) ([]*model.Message, error) {
	if f.listByThreadFn == nil {
		return nil, nil
	}
	return f.listByThreadFn(ctx, threadID)
}

func (f *fakeMessageRepository) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	if f.getByIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, messageID)
}

func (f *fakeMessageRepository) CountByThread(ctx context.Context, threadID int64) (int64, error) {
	if f.countByThreadFn == nil {
		return 0, nil
	}
	return f.countByThreadFn(ctx, threadID)
}

func (f *fakeMessageRepository) UpdateText(ctx context.Context, messageID int64, text string) (*model.Message, error) {
	f.lastText = text
	if f.updateTextFn == nil {
		return &model.Message{Id: messageID, Text: text}, nil
	}
	return f.updateTextFn(ctx, messageID, text)
}

func (f *fakeMessageRepository) Delete(ctx context.Context, messageID int64) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, messageID)
}

// ==================== fakeReadRepository ====================

type fakeReadRepository struct {
	getOrCreateFn func(ctx context.Context, threadID, userID int64) (*model.ThreadRead, error)
	markReadFn    func(ctx context.Context, threadID, userID int64, at time.Time) error
	unreadCountFn func(ctx context.Context, threadID, userID int64) (int64, error)
	unreadTotalFn func(ctx context.Context, userID int64) (int64, error)

	markReadCalls int
}

var _ repository.IReadRepository = (*fakeReadRepository)(nil)

func (f *fakeReadRepository) GetOrCreate(ctx context.Context, threadID, userID int64) (*model.ThreadRead, error) {
	if f.getOrCreateFn == nil {
		return &model.ThreadRead{ThreadId: threadID, UserId: userID, LastReadAt: model.EpochWatermark}, nil
	}
	return f.getOrCreateFn(ctx, threadID, userID)
}

func (f *fakeReadRepository) MarkRead(ctx context.Context, threadID, userID int64, at time.Time) error {
	f.markReadCalls++
	if f.markReadFn == nil {
		return nil
	}
	return f.markReadFn(ctx, threadID, userID, at)
}

func (f *fakeReadRepository) UnreadCount(ctx context.Context, threadID, userID int64) (int64, error) {
	if f.unreadCountFn == nil {
		return 0, nil
	}
	return f.unreadCountFn(ctx, threadID, userID)
}

func (f *fakeReadRepository) UnreadTotal(ctx context.Context, userID int64) (int64, error) {
	if f.unreadTotalFn == nil {
		return 0, nil
	}
	return f.unreadTotalFn(ctx, userID)
}

// ==================== fakeFlagRepository ====================

type fakeFlagRepository struct {
	flagFn      func(ctx context.Context, messageID, flaggedBy int64, reason string) (*model.MessageFlag, bool, error)
	resolveFn   func(ctx context.Context, flagID int64) (*model.MessageFlag, error)
	listFlagsFn func(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error)

	flagCalls int
}

var _ repository.IFlagRepository = (*fakeFlagRepository)(nil)

func (f *fakeFlagRepository) Flag(ctx context.Context, messageID, flaggedBy int64, reason string) (*model.MessageFlag, bool, error) {
	f.flagCalls++
	if f.flagFn == nil {
		return &model.MessageFlag{Id: 9, MessageId: messageID, FlaggedBy: flaggedBy, Reason: reason}, true, nil
	}
	return f.flagFn(ctx, messageID, flaggedBy, reason)
}

func (f *fakeFlagRepository) Resolve(ctx context.Context, flagID int64) (*model.MessageFlag, error) {
	if f.resolveFn == nil {
		return &model.MessageFlag{Id: flagID, Resolved: true}, nil
	}
	return f.resolveFn(ctx, flagID)
}

func (f *fakeFlagRepository) ListFlags(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error) {
	if f.listFlagsFn == nil {
		return nil, 0, nil
	}
	return f.listFlagsFn(ctx, onlyUnresolved, page, pageSize)
}

// ==================== fakeUserRepository ====================

// fakeUserRepository 默认从 users 中查找
type fakeUserRepository struct {
	users map[int64]*model.User

	getByIDFn       func(ctx context.Context, userID int64) (*model.User, error)
	getFreshByIDFn  func(ctx context.Context, userID int64) (*model.User, error)
	getByIDsFn      func(ctx context.Context, userIDs []int64) (map[int64]*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	listUsersFn     func(ctx context.Context, excludeID int64, page, pageSize int) ([]*model.User, int64, error)
}

var _ repository.IUserRepository = (*fakeUserRepository)(nil)

func (f *fakeUserRepository) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, userID)
	}
	return f.users[userID], nil
}

func (f *fakeUserRepository) GetFreshByID(ctx context.Context, userID int64) (*model.User, error) {
	if f.getFreshByIDFn != nil {
		return f.getFreshByIDFn(ctx, userID)
	}
	return f.users[userID], nil
}

func (f *fakeUserRepository) GetByIDs(ctx context.Context, userIDs []int64) (map[int64]*model.User, error) {
	if f.getByIDsFn != nil {
		return f.getByIDsFn(ctx, userIDs)
	}
	result := make(map[int64]*model.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

func (f *fakeUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.getByUsernameFn != nil {
		return f.getByUsernameFn(ctx, username)
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepository) ListUsers(ctx context.Context, excludeID int64, page, pageSize int) ([]*model.User, int64, error) {
	if f.listUsersFn == nil {
		return nil, 0, nil
	}
	return f.listUsersFn(ctx, excludeID, page, pageSize)
}

// ==================== helpers ====================

func newUser(id int64, username, nickname string) *model.User {
	return &model.User{
		Id:       id,
		Username: username,
		IsActive: true,
		Profile:  &model.UserProfile{UserId: id, Nickname: nickname, Status: "Member"},
	}
}

func directThread(id int64, users ...int64) *model.Thread {
	thread := &model.Thread{Id: id}
	for _, uid := range users {
		thread.Participants = append(thread.Participants, model.ThreadParticipant{ThreadId: id, UserId: uid})
	}
	return thread
}
