package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, prediction *AiPrediction) error
	ListByLine(ctx context.Context, db *gorm.DB, lineID snowflake.ID, limit int) ([]AiPrediction, error)
}
