package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() predictiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *predictiondomain.AiPrediction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ai_predictions (id, line_id, predicted_days_left, recommended_daily_usage_kwh, tips, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.LineID, p.PredictedDaysLeft, p.RecommendedDailyUsageKwh, p.Tips, p.CreatedAt,
	).Error
}

func (r *repo) ListByLine(ctx context.Context, db *gorm.DB, lineID snowflake.ID, limit int) ([]predictiondomain.AiPrediction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var predictions []predictiondomain.AiPrediction
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ai_predictions WHERE line_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		lineID, limit,
	).Scan(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}
