package models

import (
	"taskflow/src/types"
)

type Team struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	OrganizationID uint   `gorm:"index" json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Color          string `json:"color,omitempty"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	CreatedBy      string `gorm:"type:uuid" json:"created_by"`

	types.Timestamps
}
