package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	blockrepo "github.com/campuswatt/gridline/internal/block/repository"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	devicerepo "github.com/campuswatt/gridline/internal/device/repository"
	linerepo "github.com/campuswatt/gridline/internal/line/repository"
	"github.com/campuswatt/gridline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newFixture(t *testing.T) (devicedomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db := testutil.NewDB(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  testutil.NewNode(t),
		Clock:  fake,
		Config: config.Config{DeviceOfflineAfter: 10 * time.Minute},
		Repo:   devicerepo.Provide(),
		Blocks: blockrepo.Provide(),
		Lines:  linerepo.Provide(),
	})
	return svc, db, fake
}

func seedBlock(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()

	id := testutil.NewNode(t).Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO blocks (id, name, total_quota_kwh, created_at, updated_at)
		 VALUES (?, ?, 500, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, id, name,
	).Error)
	return id.String()
}

func seedLine(t *testing.T, db *gorm.DB, blockID string) string {
	t.Helper()

	bid, err := snowflake.ParseString(blockID)
	require.NoError(t, err)
	id := testutil.NewNode(t).Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO lines (id, block_id, line_number, current_quota_kwh, remaining_kwh,
		                    status, admin_intent, max_current_a, max_power_w, idle_limit_hours,
		                    created_at, updated_at)
		 VALUES (?, ?, 1, 50, 30, 'active', 'none', 10, 2200, 24, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		id, bid,
	).Error)
	return id.String()
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, db, _ := newFixture(t)
	blockID := seedBlock(t, db, "Block A")

	reg, err := svc.Register(context.Background(), devicedomain.RegisterRequest{
		BlockID: blockID,
		Name:    "meter-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)

	device, err := svc.Authenticate(context.Background(), reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Device.ID, device.ID.String())

	_, err = svc.Authenticate(context.Background(), "bogus-token")
	require.ErrorIs(t, err, devicedomain.ErrUnauthorized)
}

func TestRegisterUnknownBlock(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Register(context.Background(), devicedomain.RegisterRequest{
		BlockID: "123456",
		Name:    "meter-1",
	})
	require.ErrorIs(t, err, devicedomain.ErrInvalidBlock)
}

func TestHeartbeatTracksOnline(t *testing.T) {
	svc, db, fake := newFixture(t)
	blockID := seedBlock(t, db, "Block B")

	reg, err := svc.Register(context.Background(), devicedomain.RegisterRequest{
		BlockID: blockID,
		Name:    "meter-1",
	})
	require.NoError(t, err)

	_, err = svc.Heartbeat(context.Background(), reg.Token)
	require.NoError(t, err)

	devices, err := svc.List(context.Background(), blockID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.True(t, devices[0].Online)

	fake.Advance(time.Hour)
	devices, err = svc.List(context.Background(), blockID)
	require.NoError(t, err)
	assert.False(t, devices[0].Online)
}

func TestAuthorizeLineBlockPairing(t *testing.T) {
	svc, db, _ := newFixture(t)
	blockA := seedBlock(t, db, "Block A")
	blockB := seedBlock(t, db, "Block B")
	lineA := seedLine(t, db, blockA)

	regA, err := svc.Register(context.Background(), devicedomain.RegisterRequest{
		BlockID: blockA,
		Name:    "meter-a",
	})
	require.NoError(t, err)
	regB, err := svc.Register(context.Background(), devicedomain.RegisterRequest{
		BlockID: blockB,
		Name:    "meter-b",
	})
	require.NoError(t, err)

	devA, err := svc.Authenticate(context.Background(), regA.Token)
	require.NoError(t, err)
	require.NoError(t, svc.AuthorizeLine(context.Background(), devA, lineA))

	// A device from another block cannot touch the line.
	devB, err := svc.Authenticate(context.Background(), regB.Token)
	require.NoError(t, err)
	require.ErrorIs(t, svc.AuthorizeLine(context.Background(), devB, lineA),
		devicedomain.ErrLineNotPaired)

	require.ErrorIs(t, svc.AuthorizeLine(context.Background(), devA, "424242"),
		devicedomain.ErrUnknownLine)
	require.ErrorIs(t, svc.AuthorizeLine(context.Background(), devA, "not-a-line"),
		devicedomain.ErrInvalidLine)
}

func TestRevoke(t *testing.T) {
	svc, db, _ := newFixture(t)
	blockID := seedBlock(t, db, "Block C")

	reg, err := svc.Register(context.Background(), devicedomain.RegisterRequest{
		BlockID: blockID,
		Name:    "meter-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), reg.Device.ID))

	_, err = svc.Authenticate(context.Background(), reg.Token)
	require.ErrorIs(t, err, devicedomain.ErrUnauthorized)
}
