// Package domain contains the usage prediction model and estimator.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DaysLeftUnknown is reported when there is no usage to extrapolate
// from, so the balance lasts indefinitely as far as the data shows.
const DaysLeftUnknown = 999

// BudgetHorizonDays is the planning horizon the recommended daily
// usage spreads the remaining balance over.
const BudgetHorizonDays = 30

// AiPrediction is a persisted estimator snapshot for a line.
type AiPrediction struct {
	ID                       snowflake.ID    `json:"id" gorm:"primaryKey"`
	LineID                   snowflake.ID    `json:"line_id" gorm:"not null;index:ix_predictions_line"`
	PredictedDaysLeft        int             `json:"predicted_days_left" gorm:"not null"`
	RecommendedDailyUsageKwh decimal.Decimal `json:"recommended_daily_usage_kwh" gorm:"type:numeric(10,2);not null"`
	Tips                     datatypes.JSON  `json:"tips,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AiPrediction) TableName() string { return "ai_predictions" }
