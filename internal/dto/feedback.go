package dto

// ── 反馈模块 DTO ──

// CreateFeedbackRequest 提交反馈
type CreateFeedbackRequest struct {
	CategoryID  string `json:"category_id" binding:"required"`
	Title       string `json:"title"       binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"required,min=1,max=5000"`
	Priority    string `json:"priority"    binding:"omitempty,oneof=low medium high"`
}

// UpdateFeedbackRequest 部分更新反馈，仅处理非 nil 字段
// AssignedToID 传空串表示取消指派
type UpdateFeedbackRequest struct {
	Title        *string `json:"title"          binding:"omitempty,min=3,max=200"`
	Description  *string `json:"description"    binding:"omitempty,min=1,max=5000"`
	CategoryID   *string `json:"category_id"`
	Priority     *string `json:"priority"       binding:"omitempty,oneof=low medium high"`
	Status       *string `json:"status"`
	AssignedToID *string `json:"assigned_to_id"`
}

// UpdateStatusRequest 修改反馈状态
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FeedbackListRequest 反馈列表查询参数
type FeedbackListRequest struct {
	PaginationRequest
	Status       string `form:"status"`
	Priority     string `form:"priority"       binding:"omitempty,oneof=low medium high"`
	CategoryID   string `form:"category_id"`
	UserID       string `form:"user_id"`
	AssignedToID string `form:"assigned_to_id"`
	Search       string `form:"search"         binding:"omitempty,max=100"`
}

// ── 评论模块 DTO ──

// CreateCommentRequest 发表评论
type CreateCommentRequest struct {
	Content    string `json:"content"     binding:"required,min=1,max=2000"`
	IsInternal bool   `json:"is_internal"`
}

// UpdateCommentRequest 修改评论，仅处理非 nil 字段
type UpdateCommentRequest struct {
	Content    *string `json:"content"     binding:"omitempty,min=1,max=2000"`
	IsInternal *bool   `json:"is_internal"`
}
