package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MarketServer/apps/message/internal/repository"
	"MarketServer/consts"
	"MarketServer/model"
	"MarketServer/pkg/bizerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBizCode(t *testing.T, err error, want int32) {
	t.Helper()
	require.Error(t, err)
	code, ok := bizerr.CodeOf(err)
	require.True(t, ok, "error should be bizerr: %v", err)
	require.Equal(t, want, code)
}

type messagingFixture struct {
	threads  *fakeThreadRepository
	messages *fakeMessageRepository
	reads    *fakeReadRepository
	users    *fakeUserRepository
	svc      *messagingServiceImpl
}

func newMessagingFixture() *messagingFixture {
	initServiceTestLogger()
	f := &messagingFixture{
		threads:  &fakeThreadRepository{},
		messages: &fakeMessageRepository{},
		reads:    &fakeReadRepository{},
		users: &fakeUserRepository{users: map[int64]*model.User{
			1: newUser(1, "alice", ""),
			2: newUser(2, "bob", "Bobby"),
			3: newUser(3, "carol", ""),
		}},
	}
	f.svc = NewMessagingService(f.threads, f.messages, f.reads, f.users).(*messagingServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestMessagingServiceInbox(t *testing.T) {
	f := newMessagingFixture()
	group := &model.Thread{Id: 20, IsGroup: true, Name: "Club", Participants: []model.ThreadParticipant{{UserId: 3}, {UserId: 1}}}
	direct := directThread(10, 1, 2)
	f.threads.listForUserFn = func(ctx context.Context, userID int64) ([]*model.Thread, error) {
		assert.Equal(t, int64(1), userID)
		return []*model.Thread{group, direct}, nil
	}
	f.reads.unreadCountFn = func(ctx context.Context, threadID, userID int64) (int64, error) {
		if threadID == 10 {
			return 2, nil
		}
		return 0, nil
	}

	entries, err := f.svc.Inbox(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(20), entries[0].Thread.Id, "保持仓储返回的创建时间倒序")
	assert.Nil(t, entries[0].Other, "群聊没有对方")
	assert.Zero(t, entries[0].UnreadCount)

	require.NotNil(t, entries[1].Other)
	assert.Equal(t, int64(2), entries[1].Other.Id)
	assert.Equal(t, int64(2), entries[1].UnreadCount)
}

func TestMessagingServiceInboxErrors(t *testing.T) {
	repoErr := errors.New("db down")

	t.Run("list_failed", func(t *testing.T) {
		f := newMessagingFixture()
		f.threads.listForUserFn = func(ctx context.Context, userID int64) ([]*model.Thread, error) {
			return nil, repoErr
		}
		_, err := f.svc.Inbox(context.Background(), 1)
		requireBizCode(t, err, consts.CodeInternalError)
		assert.ErrorIs(t, err, repoErr)
	})

	t.Run("unread_failed", func(t *testing.T) {
		f := newMessagingFixture()
		f.threads.listForUserFn = func(ctx context.Context, userID int64) ([]*model.Thread, error) {
			return []*model.Thread{directThread(10, 1, 2)}, nil
		}
		f.reads.unreadCountFn = func(ctx context.Context, threadID, userID int64) (int64, error) {
			return 0, repoErr
		}
		_, err := f.svc.Inbox(context.Background(), 1)
		requireBizCode(t, err, consts.CodeInternalError)
	})
}

func TestMessagingServiceCompose(t *testing.T) {
	tests := []struct {
		name         string
		actor        int64
		other        int64
		existing     *model.Thread
		wantCode     int32
		wantDraft    bool
		wantTitle    string
		wantMessages int
	}{
		{name: "self_rejected", actor: 1, other: 1, wantCode: consts.CodeCannotMessageSelf},
		{name: "unknown_user", actor: 1, other: 404, wantCode: consts.CodeUserNotFound},
		{name: "draft_when_no_thread", actor: 1, other: 2, wantDraft: true, wantTitle: "Bobby"},
		{name: "existing_thread", actor: 1, other: 2, existing: directThread(10, 1, 2), wantTitle: "Bobby", wantMessages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMessagingFixture()
			f.threads.findDirectFn = func(ctx context.Context, userA, userB int64) (*model.Thread, error) {
				return tt.existing, nil
			}
			f.messages.listByThreadFn = func(ctx context.Context, threadID int64) ([]*model.Message, error) {
				sender := int64(2)
				return []*model.Message{{Id: 1, ThreadId: threadID, SenderId: &sender, Text: "hi"}}, nil
			}

			view, err := f.svc.Compose(context.Background(), tt.actor, tt.other)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDraft, view.IsDraft())
			assert.Equal(t, tt.wantTitle, view.Title)
			assert.Len(t, view.Messages, tt.wantMessages)
			assert.Zero(t, f.threads.getOrCreateCalls, "预览不能创建会话")
			assert.Zero(t, f.reads.markReadCalls)
		})
	}
}

func TestMessagingServiceSendDirect(t *testing.T) {
	repoErr := errors.New("insert failed")

	tests := []struct {
		name            string
		actor, other    int64
		text            string
		getOrCreateErr  error
		appendErr       error
		wantCode        int32
		wantCreateCalls int
		wantAppendCalls int
		wantText        string
	}{
		{name: "self_rejected", actor: 1, other: 1, text: "hi", wantCode: consts.CodeCannotMessageSelf},
		{name: "blank_text", actor: 1, other: 2, text: "   \n", wantCode: consts.CodeMessageEmpty},
		{name: "unknown_user", actor: 1, other: 404, text: "hi", wantCode: consts.CodeUserNotFound},
		{name: "store_invalid_operation", actor: 1, other: 2, text: "hi", getOrCreateErr: repository.ErrInvalidOperation, wantCode: consts.CodeCannotMessageSelf, wantCreateCalls: 1},
		{name: "store_failure", actor: 1, other: 2, text: "hi", getOrCreateErr: repoErr, wantCode: consts.CodeInternalError, wantCreateCalls: 1},
		{name: "append_failure", actor: 1, other: 2, text: "hi", appendErr: repoErr, wantCode: consts.CodeInternalError, wantCreateCalls: 1, wantAppendCalls: 1},
		{name: "success_trims_text", actor: 1, other: 2, text: "  hi  ", wantCreateCalls: 1, wantAppendCalls: 1, wantText: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMessagingFixture()
			f.threads.getOrCreateDirectFn = func(ctx context.Context, userA, userB int64) (*model.Thread, bool, error) {
				if tt.getOrCreateErr != nil {
					return nil, false, tt.getOrCreateErr
				}
				return directThread(10, userA, userB), true, nil
			}
			if tt.appendErr != nil {
				f.messages.appendFn = func(ctx context.Context, threadID, senderID int64, text string) (*model.Message, error) {
					return nil, tt.appendErr
				}
			}

			result, err := f.svc.SendDirect(context.Background(), tt.actor, tt.other, tt.text)
			assert.Equal(t, tt.wantCreateCalls, f.threads.getOrCreateCalls)
			assert.Equal(t, tt.wantAppendCalls, f.messages.appendCalls)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(10), result.ThreadId)
			assert.True(t, result.ThreadCreated)
			assert.Equal(t, tt.wantText, result.Message.Text)
		})
	}
}

func TestMessagingServiceSendToThread(t *testing.T) {
	tests := []struct {
		name            string
		participant     bool
		text            string
		wantCode        int32
		wantAppendCalls int
	}{
		{name: "non_participant_sees_not_found", participant: false, text: "hi", wantCode: consts.CodeConversationNotFound},
		{name: "blank_text", participant: true, text: "", wantCode: consts.CodeMessageEmpty},
		{name: "success", participant: true, text: "hello", wantAppendCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMessagingFixture()
			f.threads.isParticipantFn = func(ctx context.Context, threadID, userID int64) (bool, error) {
				return tt.participant, nil
			}

			result, err := f.svc.SendToThread(context.Background(), 1, 10, tt.text)
			assert.Equal(t, tt.wantAppendCalls, f.messages.appendCalls)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(10), result.ThreadId)
			assert.False(t, result.ThreadCreated)
		})
	}
}

func TestMessagingServiceOpenThread(t *testing.T) {
	sender := int64(2)
	oneMessage := []*model.Message{{Id: 1, ThreadId: 10, SenderId: &sender, Text: "hi"}}

	tests := []struct {
		name         string
		thread       *model.Thread
		getErr       error
		messages     []*model.Message
		wantCode     int32
		wantTitle    string
		wantMarkRead int
	}{
		{name: "missing_thread", getErr: repository.ErrRecordNotFound, wantCode: consts.CodeConversationNotFound},
		{name: "non_participant_same_outcome", thread: directThread(10, 2, 3), wantCode: consts.CodeConversationNotFound},
		{name: "direct_title_is_display_name", thread: directThread(10, 1, 2), messages: oneMessage, wantTitle: "Bobby", wantMarkRead: 1},
		{name: "direct_title_falls_back_to_username", thread: directThread(10, 1, 3), messages: oneMessage, wantTitle: "carol", wantMarkRead: 1},
		{name: "empty_thread_not_marked_read", thread: directThread(10, 1, 2), wantTitle: "Bobby", wantMarkRead: 0},
		{name: "group_name", thread: &model.Thread{Id: 10, IsGroup: true, Name: "Book Club", Participants: []model.ThreadParticipant{{UserId: 1}, {UserId: 2}}}, messages: oneMessage, wantTitle: "Book Club", wantMarkRead: 1},
		{name: "group_without_name", thread: &model.Thread{Id: 10, IsGroup: true, Participants: []model.ThreadParticipant{{UserId: 1}, {UserId: 2}}}, wantTitle: "Group chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMessagingFixture()
			f.threads.getByIDFn = func(ctx context.Context, threadID int64) (*model.Thread, error) {
				if tt.getErr != nil {
					return nil, tt.getErr
				}
				return tt.thread, nil
			}
			f.messages.listByThreadFn = func(ctx context.Context, threadID int64) ([]*model.Message, error) {
				return tt.messages, nil
			}
			var markedAt time.Time
			f.reads.markReadFn = func(ctx context.Context, threadID, userID int64, at time.Time) error {
				assert.Equal(t, int64(1), userID)
				markedAt = at
				return nil
			}

			view, err := f.svc.OpenThread(context.Background(), 1, 10)
			assert.Equal(t, tt.wantMarkRead, f.reads.markReadCalls)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, view.Title)
			assert.False(t, view.IsDraft())
			if tt.wantMarkRead > 0 {
				assert.Equal(t, f.svc.now(), markedAt)
			}
		})
	}
}

func TestMessagingServiceCreateGroup(t *testing.T) {
	tests := []struct {
		name            string
		groupName       string
		members         []int64
		wantCode        int32
		wantMembers     []int64
		wantCreateCalls int
	}{
		{name: "blank_name", groupName: "  ", members: []int64{2}, wantCode: consts.CodeGroupNameInvalid},
		{name: "name_too_long", groupName: strings.Repeat("名", 121), members: []int64{2}, wantCode: consts.CodeGroupNameInvalid},
		{name: "only_creator", groupName: "G", members: []int64{1, 1}, wantCode: consts.CodeGroupMembersEmpty},
		{name: "unknown_member", groupName: "G", members: []int64{2, 404}, wantCode: consts.CodeUserNotFound},
		{name: "success_dedup", groupName: " Book Club ", members: []int64{2, 3, 2, 1}, wantMembers: []int64{2, 3}, wantCreateCalls: 1},
		{name: "name_at_limit", groupName: strings.Repeat("a", 120), members: []int64{2}, wantMembers: []int64{2}, wantCreateCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMessagingFixture()
			var gotName string
			var gotMembers []int64
			f.threads.createGroupFn = func(ctx context.Context, name string, creator int64, members []int64) (*model.Thread, error) {
				assert.Equal(t, int64(1), creator)
				gotName, gotMembers = name, members
				return &model.Thread{Id: 30, IsGroup: true, Name: name}, nil
			}

			thread, err := f.svc.CreateGroup(context.Background(), 1, tt.groupName, tt.members)
			assert.Equal(t, tt.wantCreateCalls, f.threads.createGroupCalls)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(30), thread.Id)
			assert.Equal(t, strings.TrimSpace(tt.groupName), gotName)
			assert.Equal(t, tt.wantMembers, gotMembers)
		})
	}
}

func TestMessagingServiceUnreadTotal(t *testing.T) {
	f := newMessagingFixture()
	f.reads.unreadTotalFn = func(ctx context.Context, userID int64) (int64, error) {
		return 5, nil
	}
	total, err := f.svc.UnreadTotal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	f.reads.unreadTotalFn = func(ctx context.Context, userID int64) (int64, error) {
		return 0, errors.New("boom")
	}
	_, err = f.svc.UnreadTotal(context.Background(), 1)
	requireBizCode(t, err, consts.CodeInternalError)
}
