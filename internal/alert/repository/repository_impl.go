package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() alertdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *alertdomain.Alert) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO alerts (id, line_id, type, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.LineID, a.Type, a.Message, a.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter alertdomain.ListFilter) ([]alertdomain.Alert, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.LineID != 0 {
		conds = append(conds, "line_id = ?")
		args = append(args, filter.LineID)
	}
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, filter.Type)
	}

	query := `SELECT * FROM alerts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var alerts []alertdomain.Alert
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) LastRaisedAt(ctx context.Context, db *gorm.DB, lineID snowflake.ID, alertType alertdomain.AlertType) (time.Time, error) {
	var row struct {
		CreatedAt *time.Time `gorm:"column:created_at"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT MAX(created_at) AS created_at FROM alerts WHERE line_id = ? AND type = ?`,
		lineID, alertType,
	).Scan(&row).Error
	if err != nil {
		return time.Time{}, err
	}
	if row.CreatedAt == nil {
		return time.Time{}, nil
	}
	return *row.CreatedAt, nil
}
