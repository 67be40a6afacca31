package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/campuswatt/gridline/internal/clock"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// usageWindow is how far back the estimator looks for consumption.
const usageWindow = 7 * 24 * time.Hour

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      predictiondomain.Repository
	Lines     linedomain.Repository
	Telemetry telemetrydomain.Repository
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      predictiondomain.Repository
	lines     linedomain.Repository
	telemetry telemetrydomain.Repository
}

func New(p Params) predictiondomain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("prediction.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		lines:     p.Lines,
		telemetry: p.Telemetry,
	}
}

func (s *service) Estimate(ctx context.Context, lineID string) (*predictiondomain.Response, error) {
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return nil, predictiondomain.ErrInvalidLine
	}

	line, err := s.lines.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, predictiondomain.ErrUnknownLine
	}

	now := s.clock.Now()
	window, err := s.telemetry.Usage(ctx, s.db, id, now.Add(-usageWindow))
	if err != nil {
		return nil, err
	}

	daysSpanned := 1
	if window.FirstSample != nil {
		daysSpanned = predictiondomain.DaysSpanned(*window.FirstSample, now)
	}
	dailyAvg := predictiondomain.DailyAverage(window.TotalKwh, daysSpanned)
	daysLeft := predictiondomain.EstimateDaysLeft(line.RemainingKwh, dailyAvg)
	recommended := predictiondomain.RecommendedDaily(line.RemainingKwh)
	tips := predictiondomain.BuildTips(daysLeft, line.RemainingKwh, dailyAvg, recommended)

	tipsJSON, err := json.Marshal(tips)
	if err != nil {
		return nil, err
	}

	prediction := &predictiondomain.AiPrediction{
		ID:                       s.genID.Generate(),
		LineID:                   id,
		PredictedDaysLeft:        daysLeft,
		RecommendedDailyUsageKwh: recommended,
		Tips:                     datatypes.JSON(tipsJSON),
		CreatedAt:                now,
	}
	if err := s.repo.Insert(ctx, s.db, prediction); err != nil {
		s.log.Error("failed to persist prediction", zap.Error(err))
		return nil, err
	}

	s.log.Debug("prediction computed",
		zap.String("line_id", lineID),
		zap.Int("days_left", daysLeft),
		zap.String("daily_avg_kwh", dailyAvg.StringFixed(2)),
	)
	return &predictiondomain.Response{
		ID:                       prediction.ID.String(),
		LineID:                   lineID,
		PredictedDaysLeft:        daysLeft,
		RecommendedDailyUsageKwh: recommended.StringFixed(2),
		DailyAverageKwh:          dailyAvg.StringFixed(2),
		Tips:                     tips,
		CreatedAt:                now,
	}, nil
}

func (s *service) History(ctx context.Context, lineID string, limit int) ([]predictiondomain.Response, error) {
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return nil, predictiondomain.ErrInvalidLine
	}

	predictions, err := s.repo.ListByLine(ctx, s.db, id, limit)
	if err != nil {
		return nil, err
	}

	out := make([]predictiondomain.Response, 0, len(predictions))
	for _, p := range predictions {
		var tips []string
		if len(p.Tips) > 0 {
			_ = json.Unmarshal(p.Tips, &tips)
		}
		out = append(out, predictiondomain.Response{
			ID:                       p.ID.String(),
			LineID:                   p.LineID.String(),
			PredictedDaysLeft:        p.PredictedDaysLeft,
			RecommendedDailyUsageKwh: p.RecommendedDailyUsageKwh.StringFixed(2),
			Tips:                     tips,
			CreatedAt:                p.CreatedAt,
		})
	}
	return out, nil
}
