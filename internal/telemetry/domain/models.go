// Package domain contains the telemetry log model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// EnergyLog is one immutable meter reading reported by a device.
type EnergyLog struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	LineID    snowflake.ID    `json:"line_id" gorm:"not null;index:ix_energy_logs_line_ts,priority:1"`
	Timestamp time.Time       `json:"timestamp" gorm:"not null;index:ix_energy_logs_line_ts,priority:2"`
	PowerW    decimal.Decimal `json:"power_w" gorm:"type:numeric(10,2);not null"`
	VoltageV  decimal.Decimal `json:"voltage_v" gorm:"type:numeric(10,2);not null"`
	CurrentA  decimal.Decimal `json:"current_a" gorm:"type:numeric(10,2);not null"`
	EnergyKwh decimal.Decimal `json:"energy_kwh" gorm:"type:numeric(10,4);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (EnergyLog) TableName() string { return "energy_logs" }
