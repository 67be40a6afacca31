package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campuswatt/gridline/internal/clock"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	controlrepo "github.com/campuswatt/gridline/internal/control/repository"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	linerepo "github.com/campuswatt/gridline/internal/line/repository"
	"github.com/campuswatt/gridline/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   controldomain.Service
	lines linedomain.Repository
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	lines := linerepo.Provide()
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testutil.NewNode(t),
		Clock: fake,
		Repo:  controlrepo.Provide(),
		Lines: lines,
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

func TestEnqueueAppliesIntentImmediately(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	cmd, err := f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "disconnect",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", cmd.Status)

	stored, err := f.lines.FindByID(context.Background(), f.db, line.ID)
	require.NoError(t, err)
	assert.Equal(t, linedomain.StatusDisconnected, stored.Status)
	assert.Equal(t, linedomain.IntentDisconnect, stored.AdminIntent)
}

func TestPollClaimsAtMostOnce(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	_, err := f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "disconnect",
	})
	require.NoError(t, err)

	first, err := f.svc.PollAndClaim(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "disconnect", first.Command)

	// The command is spent; the second poll answers from line status,
	// which still says disconnect until the operator reconnects.
	second, err := f.svc.PollAndClaim(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "disconnect", second.Command)

	var executed int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM control_commands WHERE status = 'executed'`,
	).Scan(&executed).Error)
	assert.EqualValues(t, 1, executed)
}

func TestPollConcurrentClaimsOnce(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	_, err := f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "disconnect",
	})
	require.NoError(t, err)

	const pollers = 8
	var wg sync.WaitGroup
	errs := make(chan error, pollers)
	for i := 0; i < pollers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PollAndClaim(context.Background(), line.ID.String())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// However many pollers race, exactly one wins the command.
	var executed int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM control_commands WHERE status = 'executed'`,
	).Scan(&executed).Error)
	assert.EqualValues(t, 1, executed)
}

func TestPollEmptyQueueActiveLine(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	resp, err := f.svc.PollAndClaim(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "none", resp.Command)
	assert.Equal(t, "10.00", resp.Thresholds.MaxCurrentA)
	assert.Equal(t, "2200.00", resp.Thresholds.MaxPowerW)
	assert.Equal(t, 24, resp.Thresholds.IdleLimitHours)
}

func TestReconnectClearsIntent(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	_, err := f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "disconnect",
	})
	require.NoError(t, err)

	_, err = f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "reconnect",
	})
	require.NoError(t, err)

	stored, err := f.lines.FindByID(context.Background(), f.db, line.ID)
	require.NoError(t, err)
	assert.Equal(t, linedomain.StatusActive, stored.Status)
	assert.Equal(t, linedomain.IntentNone, stored.AdminIntent)
}

func TestPollClaimsNewestAndSupersedesOlder(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	_, err := f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "disconnect",
	})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Second)
	_, err = f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "reconnect",
	})
	require.NoError(t, err)

	// The reconnect outranks the stale disconnect; the device must never
	// see the older instruction.
	first, err := f.svc.PollAndClaim(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "reconnect", first.Command)

	second, err := f.svc.PollAndClaim(context.Background(), line.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "none", second.Command)

	var superseded int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM control_commands WHERE status = 'superseded' AND command = 'disconnect'`,
	).Scan(&superseded).Error)
	assert.EqualValues(t, 1, superseded)
}

func TestEnqueueRejectsUnknownCommand(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(t, "30")

	_, err := f.svc.Enqueue(context.Background(), controldomain.EnqueueRequest{
		LineID:  line.ID.String(),
		Command: "explode",
	})
	require.ErrorIs(t, err, controldomain.ErrInvalidCommand)
}
