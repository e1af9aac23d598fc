package model

import (
	"strings"
	"time"
)

// ProfileStatusSuspended 被封禁用户的资料状态
const ProfileStatusSuspended = "Suspended"

// User 身份服务维护的用户表，消息服务只读。
type User struct {
	Id         int64     `gorm:"column:id;primaryKey;comment:用户id"`
	Username   string    `gorm:"column:username;type:varchar(150);uniqueIndex;not null"`
	FirstName  string    `gorm:"column:first_name;type:varchar(150);not null;default:''"`
	LastName   string    `gorm:"column:last_name;type:varchar(150);not null;default:''"`
	IsStaff    bool      `gorm:"column:is_staff;not null;default:false"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	DateJoined time.Time `gorm:"column:date_joined"`

	Profile *UserProfile `gorm:"foreignKey:UserId;references:Id;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

// UserProfile 用户资料（只读）
type UserProfile struct {
	UserId   int64  `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Nickname string `gorm:"column:nickname;type:varchar(50);not null;default:''"`
	Status   string `gorm:"column:status;type:varchar(20);not null;default:'Member'"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// FullName 名 + 姓，任一为空时去掉多余空格
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName 展示名：昵称 > 全名 > 用户名
func (u *User) DisplayName() string {
	if u.Profile != nil {
		if nick := strings.TrimSpace(u.Profile.Nickname); nick != "" {
			return nick
		}
	}
	if full := u.FullName(); full != "" {
		return full
	}
	return u.Username
}

// IsSuspended 资料状态为封禁或账号停用
func (u *User) IsSuspended() bool {
	if !u.IsActive {
		return true
	}
	return u.Profile != nil && u.Profile.Status == ProfileStatusSuspended
}
