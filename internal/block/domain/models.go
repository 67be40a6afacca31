package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Block is a building or dorm grouping a set of metered lines.
type Block struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"type:text;not null;uniqueIndex:ux_blocks_name"`
	TotalQuotaKwh decimal.Decimal `json:"total_quota_kwh" gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Block) TableName() string { return "blocks" }
