package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, device *Device) error
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Device, error)
	List(ctx context.Context, db *gorm.DB, blockID snowflake.ID) ([]Device, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	TouchLastSeen(ctx context.Context, db *gorm.DB, id snowflake.ID, seenAt time.Time) error
}
