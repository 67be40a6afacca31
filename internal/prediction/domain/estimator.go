package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysSpanned counts the whole days covered by the sampled window,
// rounding partial days up and never reporting less than one. A single
// reading taken an hour ago still spans one day, which keeps the daily
// average from exploding on young windows.
func DaysSpanned(first, now time.Time) int {
	if !now.After(first) {
		return 1
	}
	days := int(now.Sub(first) / (24 * time.Hour))
	if now.Sub(first)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// DailyAverage spreads the window's total consumption over the days it
// spans.
func DailyAverage(totalKwh decimal.Decimal, daysSpanned int) decimal.Decimal {
	if daysSpanned < 1 {
		daysSpanned = 1
	}
	return totalKwh.Div(decimal.NewFromInt(int64(daysSpanned)))
}

// EstimateDaysLeft extrapolates how many days the remaining balance
// lasts at the observed daily average. With no observed usage it
// returns DaysLeftUnknown; an exhausted balance is zero days.
func EstimateDaysLeft(remaining, dailyAvg decimal.Decimal) int {
	if remaining.Sign() <= 0 {
		return 0
	}
	if dailyAvg.Sign() <= 0 {
		return DaysLeftUnknown
	}
	days := remaining.Div(dailyAvg).IntPart()
	if days > DaysLeftUnknown {
		return DaysLeftUnknown
	}
	return int(days)
}

// RecommendedDaily is the daily budget that stretches the remaining
// balance across the planning horizon.
func RecommendedDaily(remaining decimal.Decimal) decimal.Decimal {
	if remaining.Sign() <= 0 {
		return decimal.Zero
	}
	return remaining.Div(decimal.NewFromInt(BudgetHorizonDays)).Round(2)
}

// BuildTips assembles at most four advisory strings, most urgent first.
func BuildTips(daysLeft int, remaining, dailyAvg, recommended decimal.Decimal) []string {
	var tips []string

	switch {
	case remaining.Sign() <= 0:
		tips = append(tips, "Balance exhausted: top up now to restore power.")
	case daysLeft <= 3:
		tips = append(tips, "Balance critically low: top up within the next few days to avoid disconnection.")
	case daysLeft <= 7:
		tips = append(tips, "Balance runs out in about a week at the current pace. Plan a top-up soon.")
	}

	if dailyAvg.Sign() > 0 && recommended.Sign() > 0 && dailyAvg.GreaterThan(recommended) {
		tips = append(tips, "Daily usage exceeds the recommended budget. Cut back on high-power appliances to stay within quota.")
	}

	if dailyAvg.Sign() == 0 {
		tips = append(tips, "No recent usage recorded. Estimates improve once the meter reports consumption.")
	}

	if len(tips) < 4 {
		tips = append(tips, "Shift heavy loads like irons and kettles to off-peak hours to smooth consumption.")
	}
	if len(tips) < 4 && daysLeft > 7 && daysLeft != DaysLeftUnknown {
		tips = append(tips, "Usage is on track for the current balance.")
	}

	if len(tips) > 4 {
		tips = tips[:4]
	}
	return tips
}
