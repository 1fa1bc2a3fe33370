package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=student moderator admin"`
}

// UpdateProfileRequest 更新个人资料（仅更新非 nil 字段）
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=64"`
	Email    *string `json:"email"    binding:"omitempty,email"`
}

// AssignRoleRequest 分配角色请求（teacher 视为 moderator）
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student moderator teacher admin"`
}
