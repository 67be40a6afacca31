package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedLine(t *testing.T, db *gorm.DB, repo linedomain.Repository, remaining string) *linedomain.Line {
	t.Helper()

	node := testutil.NewNode(t)
	now := time.Now().UTC()
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
	require.NoError(t, repo.Insert(context.Background(), db, line))
	return line
}

func TestApplyConsumptionDeducts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := Provide()
	line := seedLine(t, db, repo, "10")

	result, err := repo.ApplyConsumption(context.Background(), db, line.ID, decimal.RequireFromString("3"))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, result.RemainingKwh.Equal(decimal.RequireFromString("7")), "got %s", result.RemainingKwh)
	require.Equal(t, linedomain.StatusActive, result.Status)
}

func TestApplyConsumptionClampsAtZero(t *testing.T) {
	db := testutil.NewDB(t)
	repo := Provide()
	line := seedLine(t, db, repo, "2")

	result, err := repo.ApplyConsumption(context.Background(), db, line.ID, decimal.RequireFromString("5"))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, result.RemainingKwh.IsZero(), "got %s", result.RemainingKwh)
	require.Equal(t, linedomain.StatusDisconnected, result.Status)

	// Persisted state matches the returned state.
	stored, err := repo.FindByID(context.Background(), db, line.ID)
	require.NoError(t, err)
	require.True(t, stored.RemainingKwh.IsZero())
	require.Equal(t, linedomain.StatusDisconnected, stored.Status)
}

func TestApplyConsumptionKeepsAdminDisconnect(t *testing.T) {
	db := testutil.NewDB(t)
	repo := Provide()
	line := seedLine(t, db, repo, "20")

	require.NoError(t, repo.SetAdminIntent(context.Background(), db, line.ID,
		linedomain.IntentDisconnect, linedomain.StatusDisconnected))

	result, err := repo.ApplyConsumption(context.Background(), db, line.ID, decimal.RequireFromString("1"))
	require.NoError(t, err)
	require.Equal(t, linedomain.StatusDisconnected, result.Status)
	require.True(t, result.RemainingKwh.Equal(decimal.RequireFromString("19")))
}

func TestApplyConsumptionConcurrent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := Provide()
	line := seedLine(t, db, repo, "40")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyConsumption(context.Background(), db, line.ID, decimal.RequireFromString("2"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every deduction lands: the arithmetic UPDATE admits no lost writes.
	stored, err := repo.FindByID(context.Background(), db, line.ID)
	require.NoError(t, err)
	require.True(t, stored.RemainingKwh.Equal(decimal.RequireFromString("24")),
		"lost update: got %s", stored.RemainingKwh)
}

func TestApplyConsumptionUnknownLine(t *testing.T) {
	db := testutil.NewDB(t)
	repo := Provide()

	result, err := repo.ApplyConsumption(context.Background(), db, 12345, decimal.RequireFromString("1"))
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestCreditReactivatesLine(t *testing.T) {
	db := testutil.NewDB(t)
	repo := Provide()
	line := seedLine(t, db, repo, "3")

	// Exhaust the balance, then force admin intent too.
	_, err := repo.ApplyConsumption(context.Background(), db, line.ID, decimal.RequireFromString("3"))
	require.NoError(t, err)
	require.NoError(t, repo.SetAdminIntent(context.Background(), db, line.ID,
		linedomain.IntentDisconnect, linedomain.StatusDisconnected))

	result, err := repo.Credit(context.Background(), db, line.ID, decimal.RequireFromString("25"))
	require.NoError(t, err)
	require.True(t, result.RemainingKwh.Equal(decimal.RequireFromString("25")))
	require.Equal(t, linedomain.StatusActive, result.Status)

	stored, err := repo.FindByID(context.Background(), db, line.ID)
	require.NoError(t, err)
	require.Equal(t, linedomain.IntentNone, stored.AdminIntent)
}
