package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, userID, lineID snowflake.ID, limit int) ([]Payment, error)

	// ClaimPending flips the payment to completed only when it is still
	// pending. Reports whether this call won the claim.
	ClaimPending(ctx context.Context, db *gorm.DB, reference string, verifiedAt time.Time) (bool, error)
}
