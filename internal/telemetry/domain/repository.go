package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UsageWindow aggregates readings for a line over a time window.
type UsageWindow struct {
	TotalKwh    decimal.Decimal
	SampleCount int64
	FirstSample *time.Time
	LastSample  *time.Time
}

type LogQuery struct {
	LineID snowflake.ID
	Since  time.Time
	Until  time.Time
	Limit  int
	// AfterID resumes a page after this log ID for the same timestamp order.
	AfterID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, log *EnergyLog) error
	List(ctx context.Context, db *gorm.DB, q LogQuery) ([]EnergyLog, error)
	Usage(ctx context.Context, db *gorm.DB, lineID snowflake.ID, since time.Time) (*UsageWindow, error)
	LastReportedAt(ctx context.Context, db *gorm.DB, lineID snowflake.ID) (time.Time, error)
}
