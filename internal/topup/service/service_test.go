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
	"github.com/campuswatt/gridline/internal/testutil"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	topuprepo "github.com/campuswatt/gridline/internal/topup/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   topupdomain.Service
	lines linedomain.Repository
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
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
		Config: config.Config{LowBalanceRatio: 0.2},
		Repo:   alertrepo.Provide(),
	})
	svc := New(Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Clock:  fake,
		Repo:   topuprepo.Provide(),
		Lines:  lines,
		Alerts: alerts,
	})
	return &fixture{db: db, svc: svc, lines: lines, clock: fake}
}

func (f *fixture) seedLine(t *testing.T, remaining string, status linedomain.LineStatus, intent linedomain.AdminIntent) *linedomain.Line {
	t.Helper()

	node := testutil.NewNode(t)
	now := f.clock.Now()
	line := &linedomain.Line{
		ID:              node.Generate(),
		BlockID:         node.Generate(),
		LineNumber:      1,
		CurrentQuotaKwh: decimal.RequireFromString("50"),
		RemainingKwh:    decimal.RequireFromString(remaining),
		Status:          status,
		AdminIntent:     intent,
		MaxCurrentA:     decimal.RequireFromString("10"),
		MaxPowerW:       decimal.RequireFromString("2200"),
		IdleLimitHours:  24,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, f.lines.Insert(context.Background(), f.db, line))
	return line
}

func (f *fixture) openPayment(t *testing.T, line *linedomain.Line, units string) *topupdomain.Response {
	t.Helper()

	payment, err := f.svc.Initialize(context.Background(), topupdomain.InitializeRequest{
		UserID: testutil.NewNode(t).Generate().String(),
		LineID: line.ID.String(),
		Amount: "5000",
		Units:  units,
	})
	require.NoError(t, err)
	return payment
}

func TestVerifyCreditsAndReconnects(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "0", linedomain.StatusDisconnected, linedomain.IntentNone)
	payment := f.openPayment(t, line, "25")

	resp, err := f.svc.Verify(context.Background(), topupdomain.VerifyRequest{
		Reference: payment.Reference,
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", resp.RemainingKwh)
	assert.Equal(t, "active", resp.LineStatus)
	assert.Equal(t, "completed", resp.Payment.Status)

	// The confirmation lands in the alert feed.
	var count int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM alerts WHERE line_id = ? AND type = 'top_up_confirmation'`, line.ID,
	).Scan(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestVerifyReplayRejected(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "10", linedomain.StatusActive, linedomain.IntentNone)
	payment := f.openPayment(t, line, "15")

	first, err := f.svc.Verify(context.Background(), topupdomain.VerifyRequest{
		Reference: payment.Reference,
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", first.RemainingKwh)

	// The reference is spent; replaying it is a state conflict.
	_, err = f.svc.Verify(context.Background(), topupdomain.VerifyRequest{
		Reference: payment.Reference,
	})
	require.ErrorIs(t, err, topupdomain.ErrAlreadyProcessed)

	stored, err := f.lines.FindByID(context.Background(), f.db, line.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingKwh.Equal(decimal.RequireFromString("25")),
		"credit applied twice: %s", stored.RemainingKwh)
}

func TestVerifyClearsAdminDisconnect(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30", linedomain.StatusDisconnected, linedomain.IntentDisconnect)
	payment := f.openPayment(t, line, "5")

	resp, err := f.svc.Verify(context.Background(), topupdomain.VerifyRequest{
		Reference: payment.Reference,
	})
	require.NoError(t, err)
	assert.Equal(t, "active", resp.LineStatus)

	stored, err := f.lines.FindByID(context.Background(), f.db, line.ID)
	require.NoError(t, err)
	assert.Equal(t, linedomain.IntentNone, stored.AdminIntent)
}

func TestVerifyUnknownReference(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Verify(context.Background(), topupdomain.VerifyRequest{
		Reference: "no-such-reference",
	})
	require.ErrorIs(t, err, topupdomain.ErrNotFound)
}

func TestInitializeRejectsZeroUnits(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "10", linedomain.StatusActive, linedomain.IntentNone)

	_, err := f.svc.Initialize(context.Background(), topupdomain.InitializeRequest{
		UserID: "1",
		LineID: line.ID.String(),
		Amount: "5000",
		Units:  "0",
	})
	require.ErrorIs(t, err, topupdomain.ErrInvalidUnits)
}
