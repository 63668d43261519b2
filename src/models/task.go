package models

import (
	"taskflow/src/types"
	"time"

	"gorm.io/datatypes"
)

// TaskStatus is one stage of a project's workflow. At most one row per project has IsDefault set.
type TaskStatus struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	ProjectID   uint   `gorm:"index;uniqueIndex:idx_status_default,where:is_default" json:"project_id"`
	Name        string `gorm:"size:100" json:"name"`
	Color       string `gorm:"size:7" json:"color"`
	Order       int    `gorm:"column:sort_order" json:"order"`
	IsDefault   bool   `json:"is_default"`
	IsCompleted bool   `json:"is_completed"`

	types.Timestamps
}

type TaskItem struct {
	ID                   uint                        `gorm:"primarykey" json:"id"`
	ProjectID            uint                        `gorm:"index" json:"project_id"`
	TaskStatusID         uint                        `gorm:"index" json:"task_status_id"`
	Title                string                      `gorm:"size:200" json:"title"`
	Description          string                      `json:"description,omitempty"`
	Priority             types.Priority              `gorm:"default:'Medium'" json:"priority"`
	AssignedToUserID     *string                     `gorm:"type:uuid;index" json:"assigned_to_user_id,omitempty"`
	CreatedByUserID      string                      `gorm:"type:uuid" json:"created_by_user_id"`
	DueDate              *time.Time                  `json:"due_date,omitempty"`
	EstimatedHours       *float64                    `json:"estimated_hours,omitempty"`
	CompletionPercentage float64                     `gorm:"type:numeric(5,2);default:0" json:"completion_percentage"`
	CompletedDate        *time.Time                  `json:"completed_date,omitempty"`
	Tags                 datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags,omitempty"`
	IsActive             bool                        `gorm:"default:true;index" json:"is_active"`

	types.Timestamps
}

func (t *TaskItem) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.CompletionPercentage < 100
}

type TaskComment struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	TaskItemID      uint   `gorm:"index" json:"task_id"`
	UserID          string `gorm:"type:uuid" json:"user_id"`
	Content         string `json:"content"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`

	types.Timestamps
}

type TimeEntry struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	TaskItemID  uint      `gorm:"index" json:"task_id"`
	UserID      string    `gorm:"type:uuid" json:"user_id"`
	Hours       float64   `gorm:"type:numeric(5,2)" json:"hours"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	IsBillable  bool      `json:"is_billable"`

	types.Timestamps
}
