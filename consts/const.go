package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeBodyTooLarge     = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound = 11001 // 用户不存在
	CodeUserDisabled = 11004 // 用户已被禁用
)

// 私信模块错误 (13xxx)
const (
	CodeMessageNotFound      = 13001 // 消息不存在
	CodeMessageEmpty         = 13005 // 消息内容为空
	CodeConversationNotFound = 13004 // 会话不存在
	CodeCannotMessageSelf    = 13006 // 不能给自己发私信
)

// 群聊模块错误 (14xxx)
const (
	CodeGroupNameInvalid  = 14005 // 群名称不合法
	CodeGroupMembersEmpty = 14006 // 群成员为空
)

// 审核模块错误 (15xxx)
const (
	CodeFlagNotFound = 15001 // 举报记录不存在
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
	CodeTimeoutError       = 30003 // 请求超时
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 用户模块
	CodeUserNotFound: "用户不存在",
	CodeUserDisabled: "用户已被禁用",

	// 私信模块
	CodeMessageNotFound:      "消息不存在",
	CodeMessageEmpty:         "消息内容不能为空",
	CodeConversationNotFound: "会话不存在",
	CodeCannotMessageSelf:    "不能给自己发私信",

	// 群聊模块
	CodeGroupNameInvalid:  "群名称不能为空且不超过120个字符",
	CodeGroupMembersEmpty: "至少选择一位其他成员",

	// 审核模块
	CodeFlagNotFound: "举报记录不存在",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeTimeoutError:       "请求超时",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsServerError 3xxxx 段为服务端错误
func IsServerError(code int32) bool {
	return code >= 30000 && code < 40000
}

// IsNonServerError 已登记的业务错误码（非服务端错误），handler 直接透传给客户端
func IsNonServerError(code int32) bool {
	if code == CodeSuccess || IsServerError(code) {
		return false
	}
	_, ok := CodeMessage[code]
	return ok
}
