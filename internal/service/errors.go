package service

import (
	apperrors "campus-feedback/backend/pkg/errors"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthorized, "用户名/邮箱或密码错误")
	ErrEmailNotVerified   = apperrors.New(apperrors.KindUnauthorized, "邮箱尚未验证，请先完成验证")
	ErrUsernameExists     = apperrors.New(apperrors.KindConflict, "用户名已被使用")
	ErrEmailExists        = apperrors.New(apperrors.KindConflict, "邮箱已被注册")
	ErrStudentIDExists    = apperrors.New(apperrors.KindConflict, "学号已被注册")
	ErrStudentIDMismatch  = apperrors.New(apperrors.KindBadRequest, "学号必须与邮箱前缀一致")
	ErrUserNotFound       = apperrors.New(apperrors.KindNotFound, "用户不存在")
	ErrInvalidRole        = apperrors.New(apperrors.KindBadRequest, "无效的角色")
	ErrUserSelfRoleChange = apperrors.New(apperrors.KindBadRequest, "不能修改自己的角色")
	ErrPasswordPolicy     = apperrors.New(apperrors.KindBadRequest, "密码长度必须在 8-72 字节之间")
)

// ── 验证码模块业务错误 ──

var (
	ErrOTPNotPending = apperrors.New(apperrors.KindBadRequest, "没有待验证的验证码，请重新获取")
	ErrOTPExpired    = apperrors.New(apperrors.KindBadRequest, "验证码已过期，请重新获取")
	ErrOTPMismatch   = apperrors.New(apperrors.KindBadRequest, "验证码错误")
)

// ── 密码重置模块业务错误 ──

var (
	ErrResetTokenNotFound = apperrors.New(apperrors.KindNotFound, "重置链接无效或已被使用")
	ErrResetTokenExpired  = apperrors.New(apperrors.KindUnauthorized, "重置链接已过期，请重新申请")
)

// ── 目录模块业务错误 ──

var (
	ErrDepartmentNotFound    = apperrors.New(apperrors.KindNotFound, "部门不存在")
	ErrDepartmentNameExists  = apperrors.New(apperrors.KindConflict, "部门名称已存在")
	ErrDepartmentHasChildren = apperrors.New(apperrors.KindConflict, "部门下仍有分类，无法删除")
	ErrCategoryNotFound      = apperrors.New(apperrors.KindNotFound, "分类不存在")
	ErrCategoryNameExists    = apperrors.New(apperrors.KindConflict, "该部门下已存在同名分类")
	ErrCategoryInUse         = apperrors.New(apperrors.KindConflict, "分类下仍有反馈，无法删除")
)

// ── 反馈模块业务错误 ──

var (
	ErrFeedbackNotFound   = apperrors.New(apperrors.KindNotFound, "反馈不存在")
	ErrFeedbackTerminal   = apperrors.New(apperrors.KindConflict, "反馈已处于终态，无法再变更状态")
	ErrIllegalTransition  = apperrors.New(apperrors.KindConflict, "不允许的状态流转")
	ErrInvalidStatus      = apperrors.New(apperrors.KindBadRequest, "无效的反馈状态")
	ErrInvalidPriority    = apperrors.New(apperrors.KindBadRequest, "无效的优先级")
	ErrAssigneeNotFound   = apperrors.New(apperrors.KindNotFound, "指派的处理人不存在")
	ErrAssigneeNotStaff   = apperrors.New(apperrors.KindBadRequest, "只能指派给审核员或管理员")
	ErrEmptyPatch         = apperrors.New(apperrors.KindBadRequest, "没有需要更新的字段")
	ErrExportGenerateFail = apperrors.New(apperrors.KindInternal, "生成 Excel 文件失败")
	ErrExportTooManyRows  = apperrors.New(apperrors.KindBadRequest, "导出数据超过上限，请缩小筛选范围")
)

// ── 评论模块业务错误 ──

var (
	ErrCommentNotFound = apperrors.New(apperrors.KindNotFound, "评论不存在")
)

// ErrForbidden RBAC 拒绝
var ErrForbidden = apperrors.New(apperrors.KindForbidden, "无权操作")
