package models

import (
	"taskflow/src/types"
	"time"

	"github.com/google/uuid"
)

// TrailLog records membership and role changes. Group is "<scope>:<id>".
type TrailLog struct {
	ID        uuid.UUID   `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type      string      `json:"type"`
	Initiator string      `gorm:"type:uuid" json:"initiator"`
	Group     string      `gorm:"index" json:"group"`
	Subject   string      `json:"subject,omitempty"`
	Detail    types.JSONB `gorm:"type:jsonb" json:"detail,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

const (
	TRAIL_MEMBER_ADDED   = "member_added"
	TRAIL_MEMBER_REMOVED = "member_removed"
	TRAIL_ROLE_CHANGED   = "role_changed"
)
