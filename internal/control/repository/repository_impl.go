package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() controldomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cmd *controldomain.ControlCommand) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO control_commands (id, line_id, command, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		cmd.ID, cmd.LineID, cmd.Command, cmd.Status, cmd.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, lineID snowflake.ID, limit int) ([]controldomain.ControlCommand, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var cmds []controldomain.ControlCommand
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM control_commands WHERE line_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		lineID, limit,
	).Scan(&cmds).Error
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

func (r *repo) ClaimNewestPending(ctx context.Context, db *gorm.DB, lineID snowflake.ID, executedAt time.Time) (*controldomain.ControlCommand, error) {
	if strings.EqualFold(db.Dialector.Name(), "postgres") {
		var cmd controldomain.ControlCommand
		result := db.WithContext(ctx).Raw(
			`UPDATE control_commands
			 SET status = 'executed', executed_at = ?
			 WHERE id = (
			   SELECT id FROM control_commands
			   WHERE line_id = ? AND status = 'pending'
			   ORDER BY created_at DESC, id DESC
			   LIMIT 1
			   FOR UPDATE SKIP LOCKED
			 )
			 RETURNING *`,
			executedAt, lineID,
		).Scan(&cmd)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, nil
		}
		if err := r.supersedePending(ctx, db, lineID); err != nil {
			return nil, err
		}
		return &cmd, nil
	}

	// Portable path: the conditional status guard makes the claim
	// at-most-once even when two polls race on the same row.
	for {
		var cmd controldomain.ControlCommand
		err := db.WithContext(ctx).Raw(
			`SELECT * FROM control_commands
			 WHERE line_id = ? AND status = 'pending'
			 ORDER BY created_at DESC, id DESC
			 LIMIT 1`,
			lineID,
		).Scan(&cmd).Error
		if err != nil {
			return nil, err
		}
		if cmd.ID == 0 {
			return nil, nil
		}

		result := db.WithContext(ctx).Exec(
			`UPDATE control_commands SET status = 'executed', executed_at = ?
			 WHERE id = ? AND status = 'pending'`,
			executedAt, cmd.ID,
		)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			cmd.Status = controldomain.StatusExecuted
			cmd.ExecutedAt = &executedAt
			if err := r.supersedePending(ctx, db, lineID); err != nil {
				return nil, err
			}
			return &cmd, nil
		}
		// Lost the race for this row, re-read the queue: the winner has
		// superseded everything older, so the loser sees it empty.
	}
}

// supersedePending retires pending commands the claimed one outranks.
func (r *repo) supersedePending(ctx context.Context, db *gorm.DB, lineID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE control_commands SET status = 'superseded'
		 WHERE line_id = ? AND status = 'pending'`,
		lineID,
	).Error
}
