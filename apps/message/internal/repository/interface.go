package repository

import (
	"context"
	"time"

	"MarketServer/model"
)

// ==================== 会话 Repository ====================

// IThreadRepository 会话与成员数据访问接口
type IThreadRepository interface {
	// GetOrCreateDirect 获取或创建 userA 与 userB 的一对一会话，created 表示本次调用新建了会话。
	// userA == userB 返回 ErrInvalidOperation；并发首次联系只会产生一个会话。
	GetOrCreateDirect(ctx context.Context, userA, userB int64) (thread *model.Thread, created bool, err error)

	// FindDirect 只读查询一对一会话，不存在返回 nil, nil
	FindDirect(ctx context.Context, userA, userB int64) (*model.Thread, error)

	// CreateGroup 创建群聊，creator 与 members 去重后全部加入，原子操作
	CreateGroup(ctx context.Context, name string, creator int64, members []int64) (*model.Thread, error)

	// GetByID 查询会话（含成员），不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, threadID int64) (*model.Thread, error)

	// IsParticipant 判断用户是否为会话成员
	IsParticipant(ctx context.Context, threadID, userID int64) (bool, error)

	// ListParticipants 会话成员 id，按加入顺序
	ListParticipants(ctx context.Context, threadID int64) ([]int64, error)

	// ListForUser 用户参与的全部会话（含成员），按创建时间倒序
	ListForUser(ctx context.Context, userID int64) ([]*model.Thread, error)
}

// ==================== 消息 Repository ====================

// IMessageRepository 消息数据访问接口
type IMessageRepository interface {
	// Append 追加一条消息，时间戳取当前时间，不校验内容
	Append(ctx context.Context, threadID, senderID int64, text string) (*model.Message, error)

	// ListByThread 会话内消息，按 (created_at, id) 升序
	ListByThread(ctx context.Context, threadID int64) ([]*model.Message, error)

	// GetByID 查询消息，不存在返回 ErrRecordNotFound
	GetByID(ctx context.Context, messageID int64) (*model.Message, error)

	// CountByThread 会话内消息数
	CountByThread(ctx context.Context, threadID int64) (int64, error)

	// UpdateText 管理员修改消息内容
	UpdateText(ctx context.Context, messageID int64, text string) (*model.Message, error)

	// Delete 管理员硬删除消息，举报记录级联删除
	Delete(ctx context.Context, messageID int64) error
}

// ==================== 已读 Repository ====================

// IReadRepository 已读水位线与未读数数据访问接口
type IReadRepository interface {
	// GetOrCreate 读取或创建水位线，新建时为纪元时间
	GetOrCreate(ctx context.Context, threadID, userID int64) (*model.ThreadRead, error)

	// MarkRead 推进水位线到 at，水位线只前进不后退
	MarkRead(ctx context.Context, threadID, userID int64, at time.Time) error

	// UnreadCount 会话内他人发送且晚于水位线的消息数
	UnreadCount(ctx context.Context, threadID, userID int64) (int64, error)

	// UnreadTotal 用户全部会话的未读总数（收件箱角标），带缓存
	UnreadTotal(ctx context.Context, userID int64) (int64, error)
}

// ==================== 举报 Repository ====================

// IFlagRepository 消息举报数据访问接口
type IFlagRepository interface {
	// Flag 举报消息。举报自己的消息或已有未处理举报时不做任何事，返回 created=false。
	// 消息不存在返回 ErrRecordNotFound
	Flag(ctx context.Context, messageID, flaggedBy int64, reason string) (flag *model.MessageFlag, created bool, err error)

	// Resolve 处理单条举报，不存在返回 ErrRecordNotFound
	Resolve(ctx context.Context, flagID int64) (*model.MessageFlag, error)

	// ListFlags 举报列表，按时间倒序
	ListFlags(ctx context.Context, onlyUnresolved bool, page, pageSize int) ([]*model.MessageFlag, int64, error)
}

// ==================== 用户 Repository ====================

// IUserRepository 用户只读数据访问接口（身份服务维护用户表）
type IUserRepository interface {
	// GetByID 查询用户（含资料），不存在返回 nil, nil
	GetByID(ctx context.Context, userID int64) (*model.User, error)

	// GetFreshByID 绕过缓存查询用户并刷新缓存，不存在返回 nil, nil
	GetFreshByID(ctx context.Context, userID int64) (*model.User, error)

	// GetByIDs 批量查询用户，不存在的 id 不出现在结果中
	GetByIDs(ctx context.Context, userIDs []int64) (map[int64]*model.User, error)

	// GetByUsername 按用户名查询，不存在返回 nil, nil
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// ListUsers 用户目录，排除 excludeID，按用户名排序
	ListUsers(ctx context.Context, excludeID int64, page, pageSize int) ([]*model.User, int64, error)
}
