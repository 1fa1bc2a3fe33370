package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-feedback/backend/internal/model"
)

// PasswordResetRepository 密码重置令牌数据访问接口
type PasswordResetRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	// GetUnusedByToken 仅返回未使用的令牌
	GetUnusedByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	// MarkUsed 条件更新 used=false → true，返回是否由本次调用完成标记
	MarkUsed(ctx context.Context, id string) (bool, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
}

type passwordResetRepo struct {
	db *gorm.DB
}

// NewPasswordResetRepo 创建 PasswordResetRepository 实例
func NewPasswordResetRepo(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *passwordResetRepo) GetUnusedByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND used = ?", token, false).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed UPDATE ... SET used = true WHERE token_id = ? AND used = false
// 并发兑换同一令牌时只有一个调用者能看到 RowsAffected == 1
func (r *passwordResetRepo) MarkUsed(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("token_id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *passwordResetRepo) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("email = ?", email).
		Count(&count).Error
	return count, err
}
