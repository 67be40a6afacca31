package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() blockdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *blockdomain.Block) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO blocks (id, name, total_quota_kwh, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.TotalQuotaKwh, b.CreatedAt, b.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, b *blockdomain.Block) error {
	return db.WithContext(ctx).Exec(
		`UPDATE blocks SET name = ?, total_quota_kwh = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.TotalQuotaKwh, b.UpdatedAt, b.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*blockdomain.Block, error) {
	var block blockdomain.Block
	err := db.WithContext(ctx).Raw(`SELECT * FROM blocks WHERE id = ?`, id).Scan(&block).Error
	if err != nil {
		return nil, err
	}
	if block.ID == 0 {
		return nil, nil
	}
	return &block, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]blockdomain.BlockWithCount, error) {
	var blocks []blockdomain.BlockWithCount
	err := db.WithContext(ctx).Raw(
		`SELECT b.*, COUNT(l.id) AS line_count
		 FROM blocks b
		 LEFT JOIN lines l ON l.block_id = b.id
		 GROUP BY b.id
		 ORDER BY b.name ASC`,
	).Scan(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM blocks WHERE id = ?`, id).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) DeleteCascade(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	q := db.WithContext(ctx)

	stmts := []string{
		`DELETE FROM energy_logs WHERE line_id IN (SELECT id FROM lines WHERE block_id = ?)`,
		`DELETE FROM alerts WHERE line_id IN (SELECT id FROM lines WHERE block_id = ?)`,
		`DELETE FROM control_commands WHERE line_id IN (SELECT id FROM lines WHERE block_id = ?)`,
		`DELETE FROM ai_predictions WHERE line_id IN (SELECT id FROM lines WHERE block_id = ?)`,
		`UPDATE users SET line_id = NULL, block_id = NULL WHERE block_id = ?`,
		`DELETE FROM devices WHERE block_id = ?`,
		`DELETE FROM lines WHERE block_id = ?`,
	}
	for _, stmt := range stmts {
		if err := q.Exec(stmt, id).Error; err != nil {
			return err
		}
	}

	result := q.Exec(`DELETE FROM blocks WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return blockdomain.ErrNotFound
	}
	return nil
}
