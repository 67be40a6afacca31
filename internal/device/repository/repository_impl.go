package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() devicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, d *devicedomain.Device) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO devices (id, block_id, name, token, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.BlockID, d.Name, d.Token, d.CreatedAt,
	).Error
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*devicedomain.Device, error) {
	var device devicedomain.Device
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM devices WHERE token = ?`, token,
	).Scan(&device).Error
	if err != nil {
		return nil, err
	}
	if device.ID == 0 {
		return nil, nil
	}
	return &device, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, blockID snowflake.ID) ([]devicedomain.Device, error) {
	var devices []devicedomain.Device
	var err error
	if blockID != 0 {
		err = db.WithContext(ctx).Raw(
			`SELECT * FROM devices WHERE block_id = ? ORDER BY created_at ASC`, blockID,
		).Scan(&devices).Error
	} else {
		err = db.WithContext(ctx).Raw(
			`SELECT * FROM devices ORDER BY created_at ASC`,
		).Scan(&devices).Error
	}
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	result := db.WithContext(ctx).Exec(`DELETE FROM devices WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return devicedomain.ErrNotFound
	}
	return nil
}

func (r *repo) TouchLastSeen(ctx context.Context, db *gorm.DB, id snowflake.ID, seenAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE devices SET last_seen_at = ? WHERE id = ?`, seenAt, id,
	).Error
}
