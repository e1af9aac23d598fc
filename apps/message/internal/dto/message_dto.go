package dto

// ==================== 私信相关 DTO ====================

// SendMessageRequest 发送消息请求 DTO，空白内容由业务层返回 CodeMessageEmpty
type SendMessageRequest struct {
	Text string `json:"text" binding:"max=5000"` // 消息内容
}

// CreateGroupRequest 创建群聊请求 DTO
type CreateGroupRequest struct {
	Name      string  `json:"name"`                          // 群名称
	MemberIds []int64 `json:"memberIds" binding:"dive,gt=0"` // 其他成员id，不含自己
}

// LookupUserRequest 按用户名查找用户
type LookupUserRequest struct {
	Username string `form:"username" binding:"required,notblank,max=150"` // 用户名
}

// ThreadItem 会话信息 DTO
type ThreadItem struct {
	Id             int64   `json:"id"`             // 会话id
	IsGroup        bool    `json:"isGroup"`        // 是否群聊
	Name           string  `json:"name"`           // 群名称，一对一为空
	ParticipantIds []int64 `json:"participantIds"` // 成员id
	CreatedAt      int64   `json:"createdAt"`      // 创建时间（毫秒时间戳）
}

// MessageItem 消息 DTO
type MessageItem struct {
	Id        int64     `json:"id"`        // 消息id
	ThreadId  int64     `json:"threadId"`  // 会话id
	SenderId  *int64    `json:"senderId"`  // 发送者id，用户已删除时为 null
	Sender    *UserItem `json:"sender"`    // 发送者信息
	Text      string    `json:"text"`      // 消息内容
	CreatedAt int64     `json:"createdAt"` // 发送时间（毫秒时间戳）
	UpdatedAt int64     `json:"updatedAt"` // 修改时间（毫秒时间戳）
}

// InboxItem 收件箱条目 DTO
type InboxItem struct {
	Thread      *ThreadItem `json:"thread"`      // 会话
	Other       *UserItem   `json:"other"`       // 一对一会话的对方，群聊为 null
	UnreadCount int64       `json:"unreadCount"` // 未读数
}

// InboxResponse 收件箱响应 DTO
type InboxResponse struct {
	Items []*InboxItem `json:"items"` // 会话列表（按创建时间倒序）
}

// UnreadCountResponse 未读总数响应 DTO
type UnreadCountResponse struct {
	Total int64 `json:"total"` // 未读总数
}

// ConversationResponse 会话详情响应 DTO
type ConversationResponse struct {
	Thread   *ThreadItem    `json:"thread"`   // 会话，草稿状态为 null
	Other    *UserItem      `json:"other"`    // 一对一会话的对方
	Title    string         `json:"title"`    // 标题
	IsDraft  bool           `json:"isDraft"`  // 会话尚未创建
	Messages []*MessageItem `json:"messages"` // 消息列表（按发送时间正序）
}

// SendMessageResponse 发送消息响应 DTO
type SendMessageResponse struct {
	ThreadId      int64        `json:"threadId"`      // 会话id，用于跳转
	ThreadCreated bool         `json:"threadCreated"` // 是否新建了会话
	Message       *MessageItem `json:"message"`       // 新消息
}

// CreateGroupResponse 创建群聊响应 DTO
type CreateGroupResponse struct {
	Thread *ThreadItem `json:"thread"` // 新建的群聊
}

// ListUsersResponse 用户目录响应 DTO
type ListUsersResponse struct {
	Items      []*UserItem     `json:"items"`      // 用户列表
	Pagination *PaginationInfo `json:"pagination"` // 分页信息
}
