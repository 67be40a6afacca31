package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Estimate computes a fresh prediction for the line from its recent
	// usage window and persists the snapshot.
	Estimate(ctx context.Context, lineID string) (*Response, error)

	History(ctx context.Context, lineID string, limit int) ([]Response, error)
}

type Response struct {
	ID                       string    `json:"id"`
	LineID                   string    `json:"line_id"`
	PredictedDaysLeft        int       `json:"predicted_days_left"`
	RecommendedDailyUsageKwh string    `json:"recommended_daily_usage_kwh"`
	DailyAverageKwh          string    `json:"daily_average_kwh"`
	Tips                     []string  `json:"tips"`
	CreatedAt                time.Time `json:"created_at"`
}

var (
	ErrInvalidLine = errors.New("invalid_line")
	ErrUnknownLine = errors.New("unknown_line")
)
