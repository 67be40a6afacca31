// Package testutil provides shared fixtures for service tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	dbSeq   atomic.Int64
	nodeSeq atomic.Int64
)

// NewDB opens an isolated in-memory database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:gridline_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory
	// database and serializes writes the way sqlite expects.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&blockdomain.Block{},
		&linedomain.Line{},
		&authdomain.User{},
		&telemetrydomain.EnergyLog{},
		&topupdomain.Payment{},
		&alertdomain.Alert{},
		&controldomain.ControlCommand{},
		&predictiondomain.AiPrediction{},
		&devicedomain.Device{},
	))
	return db
}

// NewNode returns a deterministic id generator for tests.
func NewNode(t *testing.T) *snowflake.Node {
	t.Helper()
	// Distinct node numbers keep IDs unique even when two freshly built
	// nodes generate in the same millisecond.
	node, err := snowflake.NewNode(nodeSeq.Add(1) % 1024)
	require.NoError(t, err)
	return node
}
