package model

import "time"

// DefaultFlagReason 举报未填写原因时的默认值
const DefaultFlagReason = "Inappropriate content"

// Message 私信消息。按 (created_at, id) 全序排列。
// 发送者被删除后 sender_id 置空，消息保留。
type Message struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement:false;comment:消息id(雪花)"`
	ThreadId  int64     `gorm:"column:thread_id;not null;index:idx_message_thread_created,priority:1;comment:会话id"`
	SenderId  *int64    `gorm:"column:sender_id;index;comment:发送者，用户删除后置空"`
	Text      string    `gorm:"column:text;type:text;not null;comment:消息内容"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_message_thread_created,priority:2;comment:发送时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Sender *User         `gorm:"foreignKey:SenderId;references:Id;constraint:OnDelete:SET NULL"`
	Flags  []MessageFlag `gorm:"foreignKey:MessageId;references:Id;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string { return "message" }

// SentBy 判断消息是否由 userId 发送（发送者已删除时恒为 false）
func (m *Message) SentBy(userId int64) bool {
	return m.SenderId != nil && *m.SenderId == userId
}

// MessageFlag 消息举报记录。同一用户对同一消息最多一条未处理举报（应用层保证）。
type MessageFlag struct {
	Id         int64      `gorm:"column:id;primaryKey;autoIncrement:false;comment:举报id(雪花)"`
	MessageId  int64      `gorm:"column:message_id;not null;index:idx_flag_message_user,priority:1;comment:消息id"`
	FlaggedBy  int64      `gorm:"column:flagged_by;not null;index:idx_flag_message_user,priority:2;comment:举报人"`
	Reason     string     `gorm:"column:reason;type:text;not null;comment:举报原因"`
	Resolved   bool       `gorm:"column:resolved;not null;default:false;index:idx_flag_message_user,priority:3;index:idx_flag_resolved;comment:是否已处理"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;comment:举报时间"`
	ResolvedAt *time.Time `gorm:"column:resolved_at;comment:处理时间"`

	Flagger *User `gorm:"foreignKey:FlaggedBy;references:Id;constraint:OnDelete:CASCADE"`
}

func (MessageFlag) TableName() string { return "message_flag" }
