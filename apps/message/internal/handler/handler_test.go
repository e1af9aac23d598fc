package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"MarketServer/consts"
	"MarketServer/pkg/bizerr"
	"MarketServer/pkg/logger"
	"MarketServer/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var handlerTestOnce sync.Once

func initHandlerTest() {
	handlerTestOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

func TestFailWithError(t *testing.T) {
	initHandlerTest()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int32
	}{
		{name: "business_code", err: bizerr.New(consts.CodeConversationNotFound), wantStatus: http.StatusOK, wantCode: consts.CodeConversationNotFound},
		{name: "wrapped_business_code", err: bizerr.Wrap(consts.CodeMessageEmpty, errors.New("blank")), wantStatus: http.StatusOK, wantCode: consts.CodeMessageEmpty},
		{name: "internal_code", err: bizerr.Wrap(consts.CodeInternalError, errors.New("db")), wantStatus: http.StatusInternalServerError, wantCode: consts.CodeInternalError},
		{name: "plain_error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: consts.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			failWithError(c, context.Background(), "测试", tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp result.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	initHandlerTest()

	tests := []struct {
		raw    string
		want   int64
		wantOk bool
	}{
		{raw: "42", want: 42, wantOk: true},
		{raw: "0", wantOk: false},
		{raw: "-3", wantOk: false},
		{raw: "abc", wantOk: false},
		{raw: "99999999999999999999", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			got, ok := parseIDParam(c, "id")
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrentActorMissing(t *testing.T) {
	initHandlerTest()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := currentActor(c)
	assert.False(t, ok)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
