package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-feedback/backend/internal/model"
)

// CommentRepository 评论数据访问接口
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// ListByFeedback 按创建时间升序；includeInternal=false 时排除内部评论
	ListByFeedback(ctx context.Context, feedbackID string, includeInternal bool) ([]model.Comment, error)
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id string) error
	DeleteByFeedback(ctx context.Context, feedbackID string) error
}

type commentRepo struct {
	db *gorm.DB
}

// NewCommentRepo 创建 CommentRepository 实例
func NewCommentRepo(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) ListByFeedback(ctx context.Context, feedbackID string, includeInternal bool) ([]model.Comment, error) {
	var list []model.Comment
	db := r.db.WithContext(ctx).Where("feedback_id = ?", feedbackID)
	if !includeInternal {
		db = db.Where("is_internal = ?", false)
	}
	err := db.Order("created_at ASC").Order("comment_id ASC").Find(&list).Error
	return list, err
}

func (r *commentRepo) Update(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("comment_id = ?", id).
		Delete(&model.Comment{}).Error
}

func (r *commentRepo) DeleteByFeedback(ctx context.Context, feedbackID string) error {
	return r.db.WithContext(ctx).
		Where("feedback_id = ?", feedbackID).
		Delete(&model.Comment{}).Error
}
