package models

import (
	"taskflow/src/types"
	"time"
)

type Organization struct {
	ID          uint                   `gorm:"primarykey" json:"id"`
	Name        string                 `json:"name"`
	Slug        string                 `gorm:"uniqueIndex" json:"slug"`
	Description string                 `json:"description,omitempty"`
	Website     string                 `json:"website,omitempty"`
	LogoURL     string                 `json:"logo_url,omitempty"`
	Plan        types.SubscriptionPlan `gorm:"default:'Free'" json:"plan"`
	IsActive    bool                   `gorm:"default:true;index" json:"is_active"`
	CreatedBy   string                 `gorm:"type:uuid" json:"created_by"`

	types.Timestamps
}

// OrganizationMember is unique per (organization, user) among active rows.
type OrganizationMember struct {
	ID             uint          `gorm:"primarykey" json:"id"`
	OrganizationID uint          `gorm:"uniqueIndex:idx_org_member_active,where:is_active" json:"organization_id"`
	UserID         string        `gorm:"type:uuid;uniqueIndex:idx_org_member_active,where:is_active" json:"user_id"`
	Role           types.OrgRole `json:"role"`
	IsActive       bool          `gorm:"default:true" json:"is_active"`
	JoinedAt       time.Time     `json:"joined_at"`
	InvitedBy      *string       `gorm:"type:uuid" json:"invited_by,omitempty"`

	types.Timestamps
}
