package models

import (
	"taskflow/src/types"
	"time"
)

type Project struct {
	ID                   uint                `gorm:"primarykey" json:"id"`
	OrganizationID       uint                `gorm:"index" json:"organization_id"`
	TeamID               *uint               `gorm:"index" json:"team_id,omitempty"`
	Name                 string              `json:"name"`
	Description          string              `json:"description,omitempty"`
	Status               types.ProjectStatus `gorm:"default:'Planning'" json:"status"`
	Priority             types.Priority      `gorm:"default:'Medium'" json:"priority"`
	StartDate            *time.Time          `json:"start_date,omitempty"`
	EndDate              *time.Time          `json:"end_date,omitempty"`
	DueDate              *time.Time          `json:"due_date,omitempty"`
	Color                string              `json:"color,omitempty"`
	CompletionPercentage float64             `gorm:"type:numeric(5,2);default:0" json:"completion_percentage"`
	IsActive             bool                `gorm:"default:true;index" json:"is_active"`
	CreatedBy            string              `gorm:"type:uuid" json:"created_by"`

	types.Timestamps
}

// ProjectMember is unique per (project, user) among active rows.
type ProjectMember struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	ProjectID uint              `gorm:"uniqueIndex:idx_project_member_active,where:is_active" json:"project_id"`
	UserID    string            `gorm:"type:uuid;uniqueIndex:idx_project_member_active,where:is_active" json:"user_id"`
	Role      types.ProjectRole `json:"role"`
	IsActive  bool              `gorm:"default:true" json:"is_active"`
	JoinedAt  time.Time         `json:"joined_at"`
	AddedBy   *string           `gorm:"type:uuid" json:"added_by,omitempty"`

	types.Timestamps
}
