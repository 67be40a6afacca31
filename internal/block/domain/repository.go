package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// BlockWithCount pairs a block with the number of lines wired under it.
type BlockWithCount struct {
	Block
	LineCount int `gorm:"column:line_count"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, block *Block) error
	Update(ctx context.Context, db *gorm.DB, block *Block) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Block, error)
	List(ctx context.Context, db *gorm.DB) ([]BlockWithCount, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	// DeleteCascade removes the block together with its lines and every
	// record keyed by those lines. Callers wrap it in a transaction.
	DeleteCascade(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
