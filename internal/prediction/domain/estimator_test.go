package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysSpanned(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysSpanned(now, now))
	assert.Equal(t, 1, DaysSpanned(now.Add(-time.Hour), now))
	assert.Equal(t, 1, DaysSpanned(now.Add(-24*time.Hour), now))
	assert.Equal(t, 2, DaysSpanned(now.Add(-25*time.Hour), now))
	assert.Equal(t, 7, DaysSpanned(now.Add(-7*24*time.Hour), now))
	assert.Equal(t, 1, DaysSpanned(now.Add(time.Hour), now))
}

func TestEstimateDaysLeft(t *testing.T) {
	remaining := decimal.RequireFromString("30")

	assert.Equal(t, 15, EstimateDaysLeft(remaining, decimal.RequireFromString("2")))
	assert.Equal(t, 20, EstimateDaysLeft(remaining, decimal.RequireFromString("1.5")))

	// Fractional days truncate toward zero.
	assert.Equal(t, 4, EstimateDaysLeft(decimal.RequireFromString("9"), decimal.RequireFromString("2")))

	// No observed usage means the balance lasts indefinitely.
	assert.Equal(t, DaysLeftUnknown, EstimateDaysLeft(remaining, decimal.Zero))

	// Exhausted balance is zero regardless of usage.
	assert.Equal(t, 0, EstimateDaysLeft(decimal.Zero, decimal.RequireFromString("2")))
	assert.Equal(t, 0, EstimateDaysLeft(decimal.RequireFromString("-1"), decimal.Zero))

	// Tiny usage against a large balance caps at the sentinel.
	assert.Equal(t, DaysLeftUnknown, EstimateDaysLeft(decimal.RequireFromString("1000"), decimal.RequireFromString("0.001")))
}

func TestRecommendedDaily(t *testing.T) {
	assert.Equal(t, "1", RecommendedDaily(decimal.RequireFromString("30")).String())
	assert.Equal(t, "0.33", RecommendedDaily(decimal.RequireFromString("10")).String())
	assert.True(t, RecommendedDaily(decimal.Zero).IsZero())
}

func TestBuildTips(t *testing.T) {
	t.Run("critical balance leads", func(t *testing.T) {
		tips := BuildTips(2, decimal.RequireFromString("3"), decimal.RequireFromString("1.5"), decimal.RequireFromString("0.10"))
		assert.NotEmpty(t, tips)
		assert.Contains(t, tips[0], "critically low")
		assert.LessOrEqual(t, len(tips), 4)
	})

	t.Run("exhausted balance", func(t *testing.T) {
		tips := BuildTips(0, decimal.Zero, decimal.RequireFromString("2"), decimal.Zero)
		assert.Contains(t, tips[0], "exhausted")
	})

	t.Run("no usage recorded", func(t *testing.T) {
		tips := BuildTips(DaysLeftUnknown, decimal.RequireFromString("50"), decimal.Zero, decimal.RequireFromString("1.67"))
		assert.NotEmpty(t, tips)
		assert.LessOrEqual(t, len(tips), 4)
	})

	t.Run("never more than four", func(t *testing.T) {
		tips := BuildTips(2, decimal.RequireFromString("1"), decimal.RequireFromString("5"), decimal.RequireFromString("0.03"))
		assert.LessOrEqual(t, len(tips), 4)
	})
}
