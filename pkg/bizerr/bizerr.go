// Package bizerr 业务错误：携带 consts 中的错误码，从 service 层透传到 handler。
package bizerr

import (
	"errors"
	"fmt"

	"MarketServer/consts"
)

// Error 业务错误
type Error struct {
	Code  int32
	cause error
}

// New 创建业务错误
func New(code int32) *Error {
	return &Error{Code: code}
}

// Wrap 创建携带底层原因的业务错误，原因只用于日志
func Wrap(code int32, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("biz %d %s: %v", e.Code, consts.GetMessage(e.Code), e.cause)
	}
	return fmt.Sprintf("biz %d %s", e.Code, consts.GetMessage(e.Code))
}

func (e *Error) Unwrap() error { return e.cause }

// Is 按错误码比较，便于 errors.Is(err, bizerr.New(code))
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// CodeOf 提取业务错误码。非业务错误返回 CodeInternalError, false。
func CodeOf(err error) (int32, bool) {
	if err == nil {
		return consts.CodeSuccess, true
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return consts.CodeInternalError, false
}

// IsCode 判断 err 是否为指定错误码的业务错误
func IsCode(err error, code int32) bool {
	c, ok := CodeOf(err)
	return ok && err != nil && c == code
}
