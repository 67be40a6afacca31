package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cmd *ControlCommand) error
	List(ctx context.Context, db *gorm.DB, lineID snowflake.ID, limit int) ([]ControlCommand, error)

	// ClaimNewestPending atomically flips the newest pending command for
	// the line to executed and returns it; older pending commands are
	// marked superseded so a stale instruction is never delivered.
	// Returns nil when the queue is empty. Two concurrent polls can
	// never claim the same command.
	ClaimNewestPending(ctx context.Context, db *gorm.DB, lineID snowflake.ID, executedAt time.Time) (*ControlCommand, error)
}
