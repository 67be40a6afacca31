package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() linedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, l *linedomain.Line) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO lines (id, block_id, line_number, current_quota_kwh, remaining_kwh, status, admin_intent,
		                    max_current_a, max_power_w, idle_limit_hours, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.BlockID,
		l.LineNumber,
		l.CurrentQuotaKwh,
		l.RemainingKwh,
		l.Status,
		l.AdminIntent,
		l.MaxCurrentA,
		l.MaxPowerW,
		l.IdleLimitHours,
		l.CreatedAt,
		l.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, l *linedomain.Line) error {
	return db.WithContext(ctx).Exec(
		`UPDATE lines
		 SET current_quota_kwh = ?, max_current_a = ?, max_power_w = ?, idle_limit_hours = ?, updated_at = ?
		 WHERE id = ?`,
		l.CurrentQuotaKwh,
		l.MaxCurrentA,
		l.MaxPowerW,
		l.IdleLimitHours,
		l.UpdatedAt,
		l.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM lines WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*linedomain.Line, error) {
	var line linedomain.Line
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM lines WHERE id = ?`, id,
	).Scan(&line).Error
	if err != nil {
		return nil, err
	}
	if line.ID == 0 {
		return nil, nil
	}
	return &line, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, blockID snowflake.ID) ([]linedomain.Line, error) {
	query := db.WithContext(ctx)
	var lines []linedomain.Line
	var err error
	if blockID != 0 {
		err = query.Raw(`SELECT * FROM lines WHERE block_id = ? ORDER BY line_number ASC`, blockID).Scan(&lines).Error
	} else {
		err = query.Raw(`SELECT * FROM lines ORDER BY block_id, line_number ASC`).Scan(&lines).Error
	}
	if err != nil {
		return nil, err
	}
	return lines, nil
}

type deductionRow struct {
	RemainingKwh decimal.Decimal       `gorm:"column:remaining_kwh"`
	Status       linedomain.LineStatus `gorm:"column:status"`
}

// The status CASE reads the pre-update balance, so the assignment order puts
// status before remaining_kwh: MySQL evaluates SET clauses left to right.
func (r *repo) ApplyConsumption(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) (*linedomain.DeductionResult, error) {
	now := time.Now().UTC()

	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		var row deductionRow
		result := db.WithContext(ctx).Raw(
			`UPDATE lines
			 SET status = CASE
			       WHEN remaining_kwh - ? <= 0 THEN 'disconnected'
			       WHEN admin_intent = 'disconnect' THEN 'disconnected'
			       ELSE 'active'
			     END,
			     remaining_kwh = GREATEST(remaining_kwh - ?, 0),
			     updated_at = ?
			 WHERE id = ?
			 RETURNING remaining_kwh, status`,
			delta, delta, now, id,
		).Scan(&row)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, nil
		}
		return &linedomain.DeductionResult{RemainingKwh: row.RemainingKwh, Status: row.Status}, nil
	}

	clamp := "GREATEST"
	if strings.EqualFold(db.Dialector.Name(), "sqlite") {
		clamp = "MAX"
	}

	result := db.WithContext(ctx).Exec(fmt.Sprintf(
		`UPDATE lines
		 SET status = CASE
		       WHEN remaining_kwh - ? <= 0 THEN 'disconnected'
		       WHEN admin_intent = 'disconnect' THEN 'disconnected'
		       ELSE 'active'
		     END,
		     remaining_kwh = %s(remaining_kwh - ?, 0),
		     updated_at = ?
		 WHERE id = ?`, clamp),
		delta, delta, now, id,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var row deductionRow
	if err := db.WithContext(ctx).Raw(
		`SELECT remaining_kwh, status FROM lines WHERE id = ?`, id,
	).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &linedomain.DeductionResult{RemainingKwh: row.RemainingKwh, Status: row.Status}, nil
}

func (r *repo) Credit(ctx context.Context, db *gorm.DB, id snowflake.ID, units decimal.Decimal) (*linedomain.DeductionResult, error) {
	now := time.Now().UTC()

	result := db.WithContext(ctx).Exec(
		`UPDATE lines
		 SET remaining_kwh = remaining_kwh + ?,
		     admin_intent = 'none',
		     status = 'active',
		     updated_at = ?
		 WHERE id = ?`,
		units, now, id,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var row deductionRow
	if err := db.WithContext(ctx).Raw(
		`SELECT remaining_kwh, status FROM lines WHERE id = ?`, id,
	).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &linedomain.DeductionResult{RemainingKwh: row.RemainingKwh, Status: row.Status}, nil
}

func (r *repo) MarkIdle(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE lines SET status = 'idle', updated_at = ? WHERE id = ? AND status = 'active'`,
		time.Now().UTC(), id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) SetAdminIntent(ctx context.Context, db *gorm.DB, id snowflake.ID, intent linedomain.AdminIntent, status linedomain.LineStatus) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE lines SET admin_intent = ?, status = ?, updated_at = ? WHERE id = ?`,
		intent, status, time.Now().UTC(), id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return linedomain.ErrNotFound
	}
	return nil
}
