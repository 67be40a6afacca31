package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	LineID snowflake.ID
	Type   AlertType
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Alert, error)

	// LastRaisedAt returns the creation time of the newest alert of the
	// given type for a line, or the zero time when none exists.
	LastRaisedAt(ctx context.Context, db *gorm.DB, lineID snowflake.ID, alertType AlertType) (time.Time, error)
}
