package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() topupdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *topupdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, user_id, line_id, amount, units_added_kwh, status, reference, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.LineID, p.Amount, p.UnitsAddedKwh, p.Status, p.Reference, p.Metadata, p.CreatedAt,
	).Error
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*topupdomain.Payment, error) {
	var payment topupdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE reference = ?`, reference,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID, lineID snowflake.ID, limit int) ([]topupdomain.Payment, error) {
	conds := []string{}
	args := []interface{}{}
	if userID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, userID)
	}
	if lineID != 0 {
		conds = append(conds, "line_id = ?")
		args = append(args, lineID)
	}

	query := `SELECT * FROM payments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)

	var payments []topupdomain.Payment
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) ClaimPending(ctx context.Context, db *gorm.DB, reference string, verifiedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE payments SET status = 'completed', verified_at = ?
		 WHERE reference = ? AND status = 'pending'`,
		verifiedAt, reference,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
