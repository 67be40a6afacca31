package service

import (
	"context"
	"testing"
	"time"

	alertrepo "github.com/campuswatt/gridline/internal/alert/repository"
	alertservice "github.com/campuswatt/gridline/internal/alert/service"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	linerepo "github.com/campuswatt/gridline/internal/line/repository"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
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
	svc   telemetrydomain.Service
	lines linedomain.Repository
	clock *clock.FakeClock
}

func newFixture(t *testing.T, cfg config.Config) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	node := testutil.NewNode(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	lines := linerepo.Provide()
	alerts := alertservice.New(alertservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  fake,
		Config: cfg,
		Repo:   alertrepo.Provide(),
	})
	svc := New(Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  fake,
		Repo:   telemetryrepo.Provide(),
		Lines:  lines,
		Alerts: alerts,
	})

	return &fixture{db: db, svc: svc, lines: lines, clock: fake}
}

func (f *fixture) seedLine(t *testing.T, remaining, quota string) *linedomain.Line {
	t.Helper()

	node := testutil.NewNode(t)
	now := f.clock.Now()
	line := &linedomain.Line{
		ID:              node.Generate(),
		BlockID:         node.Generate(),
		LineNumber:      3,
		CurrentQuotaKwh: decimal.RequireFromString(quota),
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

func defaultConfig() config.Config {
	return config.Config{LowBalanceRatio: 0.2}
}

func TestIngestDeductsAndLogs(t *testing.T) {
	f := newFixture(t, defaultConfig())
	line := f.seedLine(t, "40", "50")

	resp, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
		LineID:    line.ID.String(),
		PowerW:    "1200",
		VoltageV:  "230",
		CurrentA:  "5.2",
		EnergyKwh: "2.5",
	})
	require.NoError(t, err)
	assert.Equal(t, "37.50", resp.RemainingKwh)
	assert.Equal(t, "active", resp.Status)
	assert.Empty(t, resp.Alerts)

	logs, err := f.svc.ListLogs(context.Background(), telemetrydomain.ListLogsRequest{
		LineID: line.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, logs.Logs, 1)
	assert.Equal(t, "2.5000", logs.Logs[0].EnergyKwh)
}

func TestIngestRaisesLowBalanceAlert(t *testing.T) {
	f := newFixture(t, defaultConfig())
	line := f.seedLine(t, "10", "50")

	resp, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
		LineID:    line.ID.String(),
		PowerW:    "900",
		VoltageV:  "230",
		CurrentA:  "3.9",
		EnergyKwh: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "7.00", resp.RemainingKwh)
	assert.Equal(t, "active", resp.Status)
	assert.Contains(t, resp.Alerts, "low_balance")

	var message string
	require.NoError(t, f.db.Raw(
		`SELECT message FROM alerts WHERE line_id = ? AND type = 'low_balance'`, line.ID,
	).Scan(&message).Error)
	assert.Contains(t, message, "7.00")
	assert.Contains(t, message, "14.0%")
}

func TestIngestExhaustionDisconnects(t *testing.T) {
	f := newFixture(t, defaultConfig())
	line := f.seedLine(t, "2", "50")

	resp, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
		LineID:    line.ID.String(),
		PowerW:    "2000",
		VoltageV:  "230",
		CurrentA:  "8.7",
		EnergyKwh: "5",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.RemainingKwh)
	assert.Equal(t, "disconnected", resp.Status)
	assert.Contains(t, resp.Alerts, "disconnection")
}

func TestIngestOverloadAlert(t *testing.T) {
	f := newFixture(t, defaultConfig())
	line := f.seedLine(t, "40", "50")

	resp, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
		LineID:    line.ID.String(),
		PowerW:    "2500",
		VoltageV:  "230",
		CurrentA:  "10.9",
		EnergyKwh: "0.5",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Alerts, "overload")
}

func TestIngestUnknownLineLeavesNoTrace(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
		LineID:    "424242",
		PowerW:    "100",
		VoltageV:  "230",
		CurrentA:  "0.4",
		EnergyKwh: "1",
	})
	require.ErrorIs(t, err, telemetrydomain.ErrUnknownLine)

	var count int64
	require.NoError(t, f.db.Raw(`SELECT COUNT(1) FROM energy_logs`).Scan(&count).Error)
	assert.Zero(t, count)
}

func TestIngestRejectsNegativeEnergy(t *testing.T) {
	f := newFixture(t, defaultConfig())
	line := f.seedLine(t, "40", "50")

	_, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
		LineID:    line.ID.String(),
		PowerW:    "100",
		VoltageV:  "230",
		CurrentA:  "0.4",
		EnergyKwh: "-1",
	})
	require.ErrorIs(t, err, telemetrydomain.ErrInvalidReading)
}

func TestIngestCooldownSuppressesRepeats(t *testing.T) {
	cfg := defaultConfig()
	cfg.AlertCooldown = 30 * time.Minute
	f := newFixture(t, cfg)
	line := f.seedLine(t, "10", "50")

	report := func() {
		t.Helper()
		_, err := f.svc.Ingest(context.Background(), telemetrydomain.IngestRequest{
			LineID:    line.ID.String(),
			PowerW:    "100",
			VoltageV:  "230",
			CurrentA:  "0.4",
			EnergyKwh: "0.1",
		})
		require.NoError(t, err)
	}

	report()
	f.clock.Advance(5 * time.Minute)
	report()

	var count int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM alerts WHERE type = 'low_balance'`,
	).Scan(&count).Error)
	assert.EqualValues(t, 1, count)

	f.clock.Advance(30 * time.Minute)
	report()
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM alerts WHERE type = 'low_balance'`,
	).Scan(&count).Error)
	assert.EqualValues(t, 2, count)
}
