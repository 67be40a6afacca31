package service

import (
	"context"
	"testing"

	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	blockrepo "github.com/campuswatt/gridline/internal/block/repository"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (blockdomain.Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewDB(t)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testutil.NewNode(t),
		Repo:  blockrepo.Provide(),
	})
	return svc, db
}

func TestCreateAndGetBlock(t *testing.T) {
	svc, _ := newService(t)

	block, err := svc.Create(context.Background(), blockdomain.CreateRequest{
		Name:          "Block A",
		TotalQuotaKwh: "500",
	})
	require.NoError(t, err)
	assert.Equal(t, "Block A", block.Name)
	assert.Equal(t, "500.00", block.TotalQuotaKwh)

	got, err := svc.GetByID(context.Background(), block.ID)
	require.NoError(t, err)
	assert.Equal(t, block.ID, got.ID)
}

func TestCreateBlockDuplicateName(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), blockdomain.CreateRequest{
		Name: "Block A", TotalQuotaKwh: "500",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), blockdomain.CreateRequest{
		Name: "Block A", TotalQuotaKwh: "300",
	})
	require.ErrorIs(t, err, blockdomain.ErrBlockExists)
}

func TestCreateBlockRejectsNegativeQuota(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), blockdomain.CreateRequest{
		Name: "Block B", TotalQuotaKwh: "-5",
	})
	require.ErrorIs(t, err, blockdomain.ErrInvalidQuota)
}

func TestDeleteBlockCascades(t *testing.T) {
	svc, db := newService(t)

	block, err := svc.Create(context.Background(), blockdomain.CreateRequest{
		Name: "Block C", TotalQuotaKwh: "500",
	})
	require.NoError(t, err)

	// A line and a log hanging off the block.
	blockID, err := linedomain.ParseID(block.ID)
	require.NoError(t, err)
	node := testutil.NewNode(t)
	lineID := node.Generate()
	require.NoError(t, db.Exec(
		`INSERT INTO lines (id, block_id, line_number, current_quota_kwh, remaining_kwh, status, admin_intent,
		                    max_current_a, max_power_w, idle_limit_hours, created_at, updated_at)
		 VALUES (?, ?, 1, 50, 50, 'active', 'none', 10, 2200, 24, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		lineID, blockID,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO energy_logs (id, line_id, timestamp, power_w, voltage_v, current_a, energy_kwh, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP, 100, 230, 0.4, 1, CURRENT_TIMESTAMP)`,
		node.Generate(), lineID,
	).Error)

	require.NoError(t, svc.Delete(context.Background(), block.ID))

	var lines, logs int64
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM lines`).Scan(&lines).Error)
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM energy_logs`).Scan(&logs).Error)
	assert.Zero(t, lines)
	assert.Zero(t, logs)

	_, err = svc.GetByID(context.Background(), block.ID)
	require.ErrorIs(t, err, blockdomain.ErrNotFound)
}
