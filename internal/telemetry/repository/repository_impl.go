package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() telemetrydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *telemetrydomain.EnergyLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO energy_logs (id, line_id, timestamp, power_w, voltage_v, current_a, energy_kwh, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.LineID, log.Timestamp, log.PowerW, log.VoltageV, log.CurrentA, log.EnergyKwh, log.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, q telemetrydomain.LogQuery) ([]telemetrydomain.EnergyLog, error) {
	conds := []string{"line_id = ?"}
	args := []interface{}{q.LineID}

	if !q.Since.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, q.Since)
	}
	if !q.Until.IsZero() {
		conds = append(conds, "timestamp < ?")
		args = append(args, q.Until)
	}
	if q.AfterID != 0 {
		conds = append(conds, "id < ?")
		args = append(args, q.AfterID)
	}

	limit := q.Limit
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	args = append(args, limit+1)

	query := `SELECT * FROM energy_logs WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY id DESC LIMIT ?`

	var logs []telemetrydomain.EnergyLog
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) Usage(ctx context.Context, db *gorm.DB, lineID snowflake.ID, since time.Time) (*telemetrydomain.UsageWindow, error) {
	var row struct {
		TotalKwh    decimal.NullDecimal `gorm:"column:total_kwh"`
		SampleCount int64               `gorm:"column:sample_count"`
		FirstSample *time.Time          `gorm:"column:first_sample"`
		LastSample  *time.Time          `gorm:"column:last_sample"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(energy_kwh), 0) AS total_kwh,
		        COUNT(1) AS sample_count,
		        MIN(timestamp) AS first_sample,
		        MAX(timestamp) AS last_sample
		 FROM energy_logs
		 WHERE line_id = ? AND timestamp >= ?`,
		lineID, since,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	window := &telemetrydomain.UsageWindow{
		SampleCount: row.SampleCount,
		FirstSample: row.FirstSample,
		LastSample:  row.LastSample,
	}
	if row.TotalKwh.Valid {
		window.TotalKwh = row.TotalKwh.Decimal
	}
	return window, nil
}

func (r *repo) LastReportedAt(ctx context.Context, db *gorm.DB, lineID snowflake.ID) (time.Time, error) {
	var row struct {
		Timestamp *time.Time `gorm:"column:timestamp"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT MAX(timestamp) AS timestamp FROM energy_logs WHERE line_id = ?`,
		lineID,
	).Scan(&row).Error
	if err != nil {
		return time.Time{}, err
	}
	if row.Timestamp == nil {
		return time.Time{}, nil
	}
	return *row.Timestamp, nil
}
