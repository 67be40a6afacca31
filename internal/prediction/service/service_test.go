package service

import (
	"context"
	"testing"
	"time"

	"github.com/campuswatt/gridline/internal/clock"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	linerepo "github.com/campuswatt/gridline/internal/line/repository"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	predictionrepo "github.com/campuswatt/gridline/internal/prediction/repository"
	telemetryrepo "github.com/campuswatt/gridline/internal/telemetry/repository"
	"github.com/campuswatt/gridline/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   predictiondomain.Service
	lines linedomain.Repository
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	lines := linerepo.Provide()
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     testutil.NewNode(t),
		Clock:     fake,
		Repo:      predictionrepo.Provide(),
		Lines:     lines,
		Telemetry: telemetryrepo.Provide(),
	})
	return &fixture{db: db, svc: svc, lines: lines, clock: fake}
}

func (f *fixture) seedLine(t *testing.T, remaining string) *linedomain.Line {
	t.Helper()

	node := testutil.NewNode(t)
	now := f.clock.Now()
	line := &linedomain.Line{
		ID:              node.Generate(),
		BlockID:         node.Generate(),
		LineNumber:      1,
		CurrentQuotaKwh: decimal.RequireFromString("50"),
		RemainingKwh:    decimal.RequireFromString(remaining),
		Status:          linedomain.StatusActive,
		AdminIntent:     linedomain.IntentNone,
		MaxCurrentA:     decimal.RequireFromString("10"),
		MaxPowerW:       decimal.RequireFromString("2200"),
		IdleLimitHours:  24,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, f.lines.Insert(context.Background(), f.db, line))
	return line
}

func (f *fixture) addLog(t *testing.T, line *linedomain.Line, kwh string, at time.Time) {
	t.Helper()

	require.NoError(t, f.db.Exec(
		`INSERT INTO energy_logs (id, line_id, timestamp, power_w, voltage_v, current_a, energy_kwh, created_at)
		 VALUES (?, ?, ?, 100, 230, 0.4, ?, ?)`,
		testutil.NewNode(t).Generate(), line.ID, at, kwh, at,
	).Error)
}

func TestEstimateFromWindow(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	// 6 kWh over three days: 2 kWh/day, 15 days left on 30 kWh.
	now := f.clock.Now()
	f.addLog(t, line, "2", now.Add(-72*time.Hour))
	f.addLog(t, line, "2", now.Add(-48*time.Hour))
	f.addLog(t, line, "2", now.Add(-24*time.Hour))

	resp, err := f.svc.Estimate(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 15, resp.PredictedDaysLeft)
	assert.Equal(t, "2.00", resp.DailyAverageKwh)
	assert.Equal(t, "1.00", resp.RecommendedDailyUsageKwh)
	assert.NotEmpty(t, resp.Tips)
}

func TestEstimateNoUsage(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	resp, err := f.svc.Estimate(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, predictiondomain.DaysLeftUnknown, resp.PredictedDaysLeft)
}

func TestEstimateIgnoresOldReadings(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	// Outside the seven day window.
	f.addLog(t, line, "10", f.clock.Now().Add(-9*24*time.Hour))

	resp, err := f.svc.Estimate(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, predictiondomain.DaysLeftUnknown, resp.PredictedDaysLeft)
}

func TestEstimatePersistsSnapshot(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")
	f.addLog(t, line, "3", f.clock.Now().Add(-24*time.Hour))

	resp, err := f.svc.Estimate(context.Background(), line.ID.String())
	require.NoError(t, err)

	history, err := f.svc.History(context.Background(), line.ID.String(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resp.PredictedDaysLeft, history[0].PredictedDaysLeft)
	assert.Equal(t, resp.Tips, history[0].Tips)
}

func TestEstimateUnknownLine(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Estimate(context.Background(), "98765")
	require.ErrorIs(t, err, predictiondomain.ErrUnknownLine)
}
