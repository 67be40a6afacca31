// Package domain contains the top-up payment ledger model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
)

// Payment is one top-up purchase. The reference is the external handle
// a payment provider or cashier confirms against; verification is keyed
// on it and applies the credit exactly once.
type Payment struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	UserID        snowflake.ID      `json:"user_id" gorm:"not null;index:ix_payments_user"`
	LineID        snowflake.ID      `json:"line_id" gorm:"not null;index:ix_payments_line"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	UnitsAddedKwh decimal.Decimal   `json:"units_added_kwh" gorm:"type:numeric(10,2);not null"`
	Status        PaymentStatus     `json:"status" gorm:"type:text;not null;default:pending"`
	Reference     string            `json:"reference" gorm:"type:text;not null;uniqueIndex:ux_payments_reference"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
