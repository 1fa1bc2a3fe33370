package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/model"
	apperrors "campus-feedback/backend/pkg/errors"
	"campus-feedback/backend/pkg/password"
)

// ErrDuplicate 并发写入触发唯一约束
var ErrDuplicate = apperrors.New(apperrors.KindConflict, "记录已存在")

// mapNotFound 将 gorm.ErrRecordNotFound 转换为业务哨兵错误
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// mapDuplicate 将唯一约束冲突转换为业务哨兵错误
func mapDuplicate(err, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}

// ensureAbsent 唯一性检查：查询命中时返回 sentinel，未命中时返回 nil
func ensureAbsent(lookupErr, sentinel error) error {
	if lookupErr == nil {
		return sentinel
	}
	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return nil
	}
	return lookupErr
}

// minPasswordLen 密码最短长度（字节），上限由 bcrypt 的 72 字节决定
const minPasswordLen = 8

// hashPassword 校验密码长度后生成 bcrypt 哈希
func hashPassword(h *password.Hasher, plain string) (string, error) {
	if len(plain) < minPasswordLen {
		return "", ErrPasswordPolicy
	}
	hash, err := h.Hash(plain)
	if errors.Is(err, password.ErrTooLong) {
		return "", ErrPasswordPolicy
	}
	return hash, err
}

// normalizeEmail 邮箱统一小写、去空白
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailLocalPart 返回 @ 之前的部分
func emailLocalPart(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:            u.UserID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		StudentID:     u.StudentID,
		EmailVerified: u.EmailVerified,
		CreatedAt:     formatTime(u.CreatedAt),
	}
}

func toFeedbackResponse(f *model.Feedback) *dto.FeedbackResponse {
	return &dto.FeedbackResponse{
		ID:           f.FeedbackID,
		Title:        f.Title,
		Description:  f.Description,
		Status:       string(f.Status),
		Priority:     string(f.Priority),
		UserID:       f.UserID,
		AssignedToID: f.AssignedToID,
		CategoryID:   f.CategoryID,
		ResolvedAt:   formatTimePtr(f.ResolvedAt),
		CreatedAt:    formatTime(f.CreatedAt),
		UpdatedAt:    formatTime(f.UpdatedAt),
	}
}

func toCommentResponse(c *model.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:         c.CommentID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		UserID:     c.UserID,
		FeedbackID: c.FeedbackID,
		CreatedAt:  formatTime(c.CreatedAt),
		UpdatedAt:  formatTime(c.UpdatedAt),
	}
}
