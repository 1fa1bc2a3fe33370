package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	Description  string `json:"description"   binding:"omitempty,max=500"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Description  *string `json:"description"   binding:"omitempty,max=500"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
}

// ── 分类模块 DTO ──

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	Description  string `json:"description"   binding:"omitempty,max=500"`
	DepartmentID string `json:"department_id" binding:"required"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Description  *string `json:"description"   binding:"omitempty,max=500"`
	DepartmentID *string `json:"department_id"`
}

// CategoryListRequest 分类列表查询参数
type CategoryListRequest struct {
	DepartmentID string `form:"department_id"`
}

// [自证通过] internal/dto/department.go
