package result

import (
	"net/http"

	"MarketServer/consts"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
}

// PageData 分页列表的 data 结构
type PageData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Result 写出响应。业务错误使用 200，服务端错误（3xxxx）使用 500。
func Result(c *gin.Context, data interface{}, message string, code int32) {
	status := http.StatusOK
	if consts.IsServerError(code) {
		status = http.StatusInternalServerError
	}
	ResultWithStatus(c, status, data, message, code)
}

// ResultWithStatus 指定 HTTP 状态码写出响应（认证、限流等网关类错误）
func ResultWithStatus(c *gin.Context, status int, data interface{}, message string, code int32) {
	if message == "" {
		message = consts.GetMessage(code)
	}
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: c.GetString("trace_id"),
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Result(c, data, "", consts.CodeSuccess)
}

// Fail 返回失败响应
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, data, "", code)
}

// Abort 写出响应并终止后续中间件
func Abort(c *gin.Context, status int, code int32) {
	ResultWithStatus(c, status, nil, "", code)
	c.Abort()
}

// FailWithMessage 返回失败响应并自定义消息
func FailWithMessage(c *gin.Context, data interface{}, message string, code int32) {
	Result(c, data, message, code)
}
