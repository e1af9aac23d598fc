package model

import (
	"fmt"
	"time"
)

// Thread 私信会话（一对一或群聊）。
// 约束：pair_key 唯一索引保证同一对用户最多一个一对一会话；群聊 pair_key 为 NULL，不参与唯一约束。
// 存量数据可能存在 pair_key 为空的一对一会话，首次访问时回填。
type Thread struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement:false;comment:会话id(雪花)"`
	PairKey   *string   `gorm:"column:pair_key;type:varchar(64);uniqueIndex:uidx_thread_pair_key;comment:一对一去重键 {小id}:{大id}"`
	IsGroup   bool      `gorm:"column:is_group;not null;default:false;comment:是否群聊"`
	Name      string    `gorm:"column:name;type:varchar(120);not null;default:'';comment:群名称，一对一为空"`
	CreatedBy *int64    `gorm:"column:created_by;index;comment:群创建者，用户删除后置空"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_thread_created_at;comment:创建时间"`

	Creator      *User               `gorm:"foreignKey:CreatedBy;references:Id;constraint:OnDelete:SET NULL"`
	Participants []ThreadParticipant `gorm:"foreignKey:ThreadId;references:Id;constraint:OnDelete:CASCADE"`
	Messages     []Message           `gorm:"foreignKey:ThreadId;references:Id;constraint:OnDelete:CASCADE"`
	Reads        []ThreadRead        `gorm:"foreignKey:ThreadId;references:Id;constraint:OnDelete:CASCADE"`
}

func (Thread) TableName() string { return "message_thread" }

// ParticipantIds 返回已加载的参与者 id（需 Preload Participants）
func (t *Thread) ParticipantIds() []int64 {
	ids := make([]int64, 0, len(t.Participants))
	for _, p := range t.Participants {
		ids = append(ids, p.UserId)
	}
	return ids
}

// HasParticipant 判断已加载的参与者中是否包含 userId
func (t *Thread) HasParticipant(userId int64) bool {
	for _, p := range t.Participants {
		if p.UserId == userId {
			return true
		}
	}
	return false
}

// PairKeyOf 生成一对一去重键，与参数顺序无关
func PairKeyOf(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ThreadParticipant 会话成员。联合主键保证同一用户在同一会话只出现一次。
type ThreadParticipant struct {
	ThreadId int64     `gorm:"column:thread_id;primaryKey;autoIncrement:false;comment:会话id"`
	UserId   int64     `gorm:"column:user_id;primaryKey;autoIncrement:false;index:idx_participant_user;comment:用户id"`
	JoinedAt time.Time `gorm:"column:joined_at;not null;comment:加入时间"`

	User *User `gorm:"foreignKey:UserId;references:Id;constraint:OnDelete:CASCADE"`
}

func (ThreadParticipant) TableName() string { return "message_thread_participant" }

// ThreadRead 已读水位线，每个 (会话, 用户) 最多一条。
type ThreadRead struct {
	ThreadId   int64     `gorm:"column:thread_id;primaryKey;autoIncrement:false;comment:会话id"`
	UserId     int64     `gorm:"column:user_id;primaryKey;autoIncrement:false;comment:用户id"`
	LastReadAt time.Time `gorm:"column:last_read_at;not null;comment:已读水位线"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserId;references:Id;constraint:OnDelete:CASCADE"`
}

func (ThreadRead) TableName() string { return "message_thread_read" }

// EpochWatermark 新建 ThreadRead 的初始水位线，任何消息都晚于它
var EpochWatermark = time.Unix(0, 0).UTC()
