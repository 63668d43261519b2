package models

import (
	"taskflow/src/types"
	"time"
)

type User struct {
	ID           string     `gorm:"primarykey;type:uuid" json:"id"`
	Name         string     `json:"name,omitempty"`
	Email        string     `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	LastActive   *time.Time `json:"last_active,omitempty"`

	types.Timestamps
}
