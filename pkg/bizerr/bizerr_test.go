package bizerr

import (
	"errors"
	"fmt"
	"testing"

	"MarketServer/consts"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int32
		wantBiz  bool
	}{
		{name: "nil", err: nil, wantCode: consts.CodeSuccess, wantBiz: true},
		{name: "biz", err: New(consts.CodeConversationNotFound), wantCode: consts.CodeConversationNotFound, wantBiz: true},
		{name: "wrapped_biz", err: fmt.Errorf("ctx: %w", New(consts.CodeMessageEmpty)), wantCode: consts.CodeMessageEmpty, wantBiz: true},
		{name: "plain", err: errors.New("db down"), wantCode: consts.CodeInternalError, wantBiz: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CodeOf(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBiz, ok)
		})
	}
}

func TestErrorsIsByCode(t *testing.T) {
	cause := errors.New("record not found")
	err := Wrap(consts.CodeUserNotFound, cause)

	assert.ErrorIs(t, err, New(consts.CodeUserNotFound))
	assert.NotErrorIs(t, err, New(consts.CodeMessageNotFound))
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, consts.CodeUserNotFound))
	assert.False(t, IsCode(nil, consts.CodeUserNotFound))
	assert.Contains(t, err.Error(), "record not found")
}
