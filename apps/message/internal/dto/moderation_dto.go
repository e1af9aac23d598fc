package dto

// ==================== 举报与管理相关 DTO ====================

// FlagMessageRequest 举报消息请求 DTO，原因为空时使用默认原因
type FlagMessageRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"` // 举报原因
}

// ListFlagsRequest 举报列表查询参数
type ListFlagsRequest struct {
	PageRequest
	Unresolved *bool `form:"unresolved"` // 只看未处理，默认 true
}

// OnlyUnresolved 未传时默认只看未处理
func (r ListFlagsRequest) OnlyUnresolved() bool {
	return r.Unresolved == nil || *r.Unresolved
}

// EditMessageRequest 管理员修改消息请求 DTO
type EditMessageRequest struct {
	Text string `json:"text" binding:"max=5000"` // 新内容
}

// FlagItem 举报记录 DTO
type FlagItem struct {
	Id         int64     `json:"id"`         // 举报id
	MessageId  int64     `json:"messageId"`  // 消息id
	FlaggedBy  int64     `json:"flaggedBy"`  // 举报人id
	Flagger    *UserItem `json:"flagger"`    // 举报人信息
	Reason     string    `json:"reason"`     // 举报原因
	Resolved   bool      `json:"resolved"`   // 是否已处理
	CreatedAt  int64     `json:"createdAt"`  // 举报时间（毫秒时间戳）
	ResolvedAt *int64    `json:"resolvedAt"` // 处理时间（毫秒时间戳）
}

// FlagMessageResponse 举报响应 DTO，created=false 表示重复举报或举报自己的消息
type FlagMessageResponse struct {
	Created bool      `json:"created"` // 是否产生了新举报
	Flag    *FlagItem `json:"flag"`    // 新举报
}

// ListFlagsResponse 举报列表响应 DTO
type ListFlagsResponse struct {
	Items      []*FlagItem     `json:"items"`      // 举报列表
	Pagination *PaginationInfo `json:"pagination"` // 分页信息
}
