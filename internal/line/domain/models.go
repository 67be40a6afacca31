// Package domain contains the line model and the status merge rule.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type LineStatus string

const (
	StatusActive       LineStatus = "active"
	StatusIdle         LineStatus = "idle"
	StatusDisconnected LineStatus = "disconnected"
)

// AdminIntent records the most recent operator instruction for a line.
// It is one of the two facts the status merge rule is computed from,
// the other being the sign of the remaining balance.
type AdminIntent string

const (
	IntentNone       AdminIntent = "none"
	IntentDisconnect AdminIntent = "disconnect"
)

// Line is a billed electrical circuit with a quota balance.
type Line struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	BlockID         snowflake.ID    `json:"block_id" gorm:"not null;index:ux_lines_block_number,unique,priority:1"`
	LineNumber      int             `json:"line_number" gorm:"not null;index:ux_lines_block_number,unique,priority:2"`
	CurrentQuotaKwh decimal.Decimal `json:"current_quota_kwh" gorm:"type:numeric(10,2);not null"`
	RemainingKwh    decimal.Decimal `json:"remaining_kwh" gorm:"type:numeric(10,2);not null"`
	Status          LineStatus      `json:"status" gorm:"type:text;not null;default:active"`
	AdminIntent     AdminIntent     `json:"admin_intent" gorm:"type:text;not null;default:none"`

	// Device thresholds reported back on control polls.
	MaxCurrentA    decimal.Decimal `json:"max_current_a" gorm:"type:numeric(10,2);not null"`
	MaxPowerW      decimal.Decimal `json:"max_power_w" gorm:"type:numeric(10,2);not null"`
	IdleLimitHours int             `json:"idle_limit_hours" gorm:"not null;default:24"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Line) TableName() string { return "lines" }

// DeriveStatus merges the two independent status facts into the persisted
// status. A line is disconnected when its balance is exhausted or when the
// operator's standing instruction says so; otherwise it is active. Telemetry
// and top-ups recompute this with the current intent, so an admin disconnect
// survives telemetry but is cleared by a reconnect or a top-up.
func DeriveStatus(remaining decimal.Decimal, intent AdminIntent) LineStatus {
	if remaining.Sign() <= 0 {
		return StatusDisconnected
	}
	if intent == IntentDisconnect {
		return StatusDisconnected
	}
	return StatusActive
}
