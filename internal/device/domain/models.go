// Package domain contains the metering device registry model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Device is a registered meter controller. One device serves a block
// and authenticates with its token on every telemetry and control call.
type Device struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	BlockID snowflake.ID `json:"block_id" gorm:"not null;index:ix_devices_block"`
	Name    string       `json:"name" gorm:"type:text;not null"`
	Token   string       `json:"-" gorm:"type:text;not null;uniqueIndex:ux_devices_token"`

	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Device) TableName() string { return "devices" }
