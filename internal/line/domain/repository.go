package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeductionResult is the authoritative post-update state returned by
// ApplyConsumption. The device uses it to decide whether to cut power.
type DeductionResult struct {
	RemainingKwh decimal.Decimal
	Status       LineStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, line *Line) error
	Update(ctx context.Context, db *gorm.DB, line *Line) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Line, error)
	List(ctx context.Context, db *gorm.DB, blockID snowflake.ID) ([]Line, error)

	// ApplyConsumption atomically deducts delta from the line's remaining
	// balance (clamped at zero) and re-derives status in the same update
	// expression. Returns nil when the line does not exist.
	ApplyConsumption(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) (*DeductionResult, error)

	// Credit adds units to the remaining balance, clears the admin intent
	// and forces the line active. Returns nil when the line does not exist.
	Credit(ctx context.Context, db *gorm.DB, id snowflake.ID, units decimal.Decimal) (*DeductionResult, error)

	// SetAdminIntent persists the operator instruction and the merged status.
	SetAdminIntent(ctx context.Context, db *gorm.DB, id snowflake.ID, intent AdminIntent, status LineStatus) error

	// MarkIdle flips an active line to idle. Reports whether the flip
	// happened; a line that consumed power in the meantime is left alone.
	MarkIdle(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
