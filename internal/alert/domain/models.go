// Package domain contains the alert model and evaluation inputs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AlertType string

const (
	TypeLowBalance     AlertType = "low_balance"
	TypeIdleLine       AlertType = "idle_line"
	TypeOverload       AlertType = "overload"
	TypeDisconnection  AlertType = "disconnection"
	TypeTopupConfirmed AlertType = "top_up_confirmation"
)

// Alert is a persisted operational event raised against a line.
type Alert struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	LineID  snowflake.ID `json:"line_id" gorm:"not null;index:ix_alerts_line"`
	Type    AlertType    `json:"type" gorm:"type:text;not null"`
	Message string       `json:"message" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_alerts_created"`
}

// TableName sets the database table name.
func (Alert) TableName() string { return "alerts" }
