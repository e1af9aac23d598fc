package service

import (
	"context"
	"errors"
	"testing"

	"MarketServer/apps/message/internal/repository"
	"MarketServer/consts"
	"MarketServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moderationFixture struct {
	threads  *fakeThreadRepository
	messages *fakeMessageRepository
	flags    *fakeFlagRepository
	svc      IModerationService
}

func newModerationFixture() *moderationFixture {
	initServiceTestLogger()
	f := &moderationFixture{
		threads:  &fakeThreadRepository{},
		messages: &fakeMessageRepository{},
		flags:    &fakeFlagRepository{},
	}
	f.svc = NewModerationService(f.threads, f.messages, f.flags)
	return f
}

func TestModerationServiceFlagMessage(t *testing.T) {
	repoErr := errors.New("db down")
	sender := int64(5)

	tests := []struct {
		name          string
		getErr        error
		participant   bool
		flagCreated   bool
		flagErr       error
		wantCode      int32
		wantCreated   bool
		wantFlagCalls int
	}{
		{name: "message_missing", getErr: repository.ErrRecordNotFound, wantCode: consts.CodeMessageNotFound},
		{name: "message_lookup_failed", getErr: repoErr, wantCode: consts.CodeInternalError},
		{name: "non_participant_sees_not_found", participant: false, wantCode: consts.CodeMessageNotFound},
		{name: "created", participant: true, flagCreated: true, wantCreated: true, wantFlagCalls: 1},
		{name: "noop_is_not_error", participant: true, flagCreated: false, wantCreated: false, wantFlagCalls: 1},
		{name: "deleted_concurrently", participant: true, flagErr: repository.ErrRecordNotFound, wantCode: consts.CodeMessageNotFound, wantFlagCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newModerationFixture()
			f.messages.getByIDFn = func(ctx context.Context, messageID int64) (*model.Message, error) {
				if tt.getErr != nil {
					return nil, tt.getErr
				}
				return &model.Message{Id: messageID, ThreadId: 10, SenderId: &sender}, nil
			}
			f.threads.isParticipantFn = func(ctx context.Context, threadID, userID int64) (bool, error) {
				assert.Equal(t, int64(10), threadID)
				return tt.participant, nil
			}
			f.flags.flagFn = func(ctx context.Context, messageID, flaggedBy int64, reason string) (*model.MessageFlag, bool, error) {
				if tt.flagErr != nil {
					return nil, false, tt.flagErr
				}
				if !tt.flagCreated {
					return nil, false, nil
				}
				return &model.MessageFlag{Id: 1, MessageId: messageID, FlaggedBy: flaggedBy, Reason: reason}, true, nil
			}

			result, err := f.svc.FlagMessage(context.Background(), 4, 77, "spam")
			assert.Equal(t, tt.wantFlagCalls, f.flags.flagCalls)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, result.Created)
			if tt.wantCreated {
				assert.Equal(t, int64(77), result.Flag.MessageId)
			}
		})
	}
}

func TestModerationServiceResolveFlag(t *testing.T) {
	f := newModerationFixture()
	flag, err := f.svc.ResolveFlag(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, flag.Resolved)

	f.flags.resolveFn = func(ctx context.Context, flagID int64) (*model.MessageFlag, error) {
		return nil, repository.ErrRecordNotFound
	}
	_, err = f.svc.ResolveFlag(context.Background(), 3)
	requireBizCode(t, err, consts.CodeFlagNotFound)
}

func TestModerationServiceEditMessage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		updateErr error
		wantCode  int32
		wantText  string
	}{
		{name: "blank_after_trim", text: " \t ", wantCode: consts.CodeMessageEmpty},
		{name: "missing_message", text: "x", updateErr: repository.ErrRecordNotFound, wantCode: consts.CodeMessageNotFound},
		{name: "store_failure", text: "x", updateErr: errors.New("boom"), wantCode: consts.CodeInternalError},
		{name: "success", text: "  cleaned  ", wantText: "cleaned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newModerationFixture()
			if tt.updateErr != nil {
				f.messages.updateTextFn = func(ctx context.Context, messageID int64, text string) (*model.Message, error) {
					return nil, tt.updateErr
				}
			}
			msg, err := f.svc.EditMessage(context.Background(), 8, tt.text)
			if tt.wantCode != 0 {
				requireBizCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, msg.Text)
			assert.Equal(t, tt.wantText, f.messages.lastText)
		})
	}
}

func TestModerationServiceDeleteAndList(t *testing.T) {
	f := newModerationFixture()
	require.NoError(t, f.svc.DeleteMessage(context.Background(), 8))

	f.messages.deleteFn = func(ctx context.Context, messageID int64) error {
		return repository.ErrRecordNotFound
	}
	requireBizCode(t, f.svc.DeleteMessage(context.Background(), 8), consts.CodeMessageNotFound)

	f.flags.listFlagsFn = func(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error) {
		assert.True(t, onlyUnresolved)
		assert.Equal(t, 2, page)
		return []*model.MessageFlag{{Id: 1}}, 11, nil
	}
	flags, total, err := f.svc.ListFlags(context.Background(), true, 2, 10)
	require.NoError(t, err)
	assert.Len(t, flags, 1)
	assert.Equal(t, int64(11), total)
}
