package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   linedomain.Repository
	Blocks blockdomain.Repository
}

type service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   linedomain.Repository
	blocks blockdomain.Repository
}

func New(p Params) linedomain.Service {
	return &service{
		db:     p.DB,
		log:    p.Log.Named("line.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		blocks: p.Blocks,
	}
}

func (s *service) Create(ctx context.Context, req linedomain.CreateRequest) (*linedomain.Response, error) {
	blockID, err := linedomain.ParseID(req.BlockID)
	if err != nil {
		return nil, linedomain.ErrInvalidBlock
	}
	if req.LineNumber <= 0 {
		return nil, linedomain.ErrInvalidLineNumber
	}

	quota, err := linedomain.ParseKwh(req.CurrentQuotaKwh)
	if err != nil {
		return nil, err
	}
	remaining := quota
	if req.RemainingKwh != "" {
		if remaining, err = linedomain.ParseKwh(req.RemainingKwh); err != nil {
			return nil, err
		}
	}
	maxCurrent, err := linedomain.ParseKwh(req.MaxCurrentA)
	if err != nil {
		return nil, linedomain.ErrInvalidThreshold
	}
	maxPower, err := linedomain.ParseKwh(req.MaxPowerW)
	if err != nil {
		return nil, linedomain.ErrInvalidThreshold
	}

	exists, err := s.blocks.Exists(ctx, s.db, blockID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, linedomain.ErrInvalidBlock
	}

	now := time.Now().UTC()
	line := &linedomain.Line{
		ID:              s.genID.Generate(),
		BlockID:         blockID,
		LineNumber:      req.LineNumber,
		CurrentQuotaKwh: quota,
		RemainingKwh:    remaining,
		Status:          linedomain.DeriveStatus(remaining, linedomain.IntentNone),
		AdminIntent:     linedomain.IntentNone,
		MaxCurrentA:     maxCurrent,
		MaxPowerW:       maxPower,
		IdleLimitHours:  24,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.IdleLimitHours != nil && *req.IdleLimitHours > 0 {
		line.IdleLimitHours = *req.IdleLimitHours
	}

	if err := s.repo.Insert(ctx, s.db, line); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, linedomain.ErrLineExists
		}
		s.log.Error("failed to insert line", zap.Error(err))
		return nil, err
	}

	s.log.Info("line created",
		zap.String("line_id", line.ID.String()),
		zap.String("block_id", line.BlockID.String()),
		zap.Int("line_number", line.LineNumber),
	)
	return toResponse(line), nil
}

func (s *service) List(ctx context.Context, req linedomain.ListRequest) ([]linedomain.Response, error) {
	var blockID snowflake.ID
	if req.BlockID != "" {
		id, err := linedomain.ParseID(req.BlockID)
		if err != nil {
			return nil, linedomain.ErrInvalidBlock
		}
		blockID = id
	}

	lines, err := s.repo.List(ctx, s.db, blockID)
	if err != nil {
		return nil, err
	}
	out := make([]linedomain.Response, 0, len(lines))
	for i := range lines {
		out = append(out, *toResponse(&lines[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*linedomain.Response, error) {
	lineID, err := linedomain.ParseID(id)
	if err != nil {
		return nil, linedomain.ErrInvalidID
	}
	line, err := s.repo.FindByID(ctx, s.db, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, linedomain.ErrNotFound
	}
	return toResponse(line), nil
}

func (s *service) Update(ctx context.Context, req linedomain.UpdateRequest) (*linedomain.Response, error) {
	lineID, err := linedomain.ParseID(req.ID)
	if err != nil {
		return nil, linedomain.ErrInvalidID
	}
	line, err := s.repo.FindByID(ctx, s.db, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, linedomain.ErrNotFound
	}

	if req.CurrentQuotaKwh != nil {
		quota, err := linedomain.ParseKwh(*req.CurrentQuotaKwh)
		if err != nil {
			return nil, err
		}
		line.CurrentQuotaKwh = quota
	}
	if req.MaxCurrentA != nil {
		v, err := linedomain.ParseKwh(*req.MaxCurrentA)
		if err != nil {
			return nil, linedomain.ErrInvalidThreshold
		}
		line.MaxCurrentA = v
	}
	if req.MaxPowerW != nil {
		v, err := linedomain.ParseKwh(*req.MaxPowerW)
		if err != nil {
			return nil, linedomain.ErrInvalidThreshold
		}
		line.MaxPowerW = v
	}
	if req.IdleLimitHours != nil {
		if *req.IdleLimitHours <= 0 {
			return nil, linedomain.ErrInvalidThreshold
		}
		line.IdleLimitHours = *req.IdleLimitHours
	}
	line.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, line); err != nil {
		return nil, err
	}
	return toResponse(line), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	lineID, err := linedomain.ParseID(id)
	if err != nil {
		return linedomain.ErrInvalidID
	}

	line, err := s.repo.FindByID(ctx, s.db, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return linedomain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmts := []string{
			`DELETE FROM energy_logs WHERE line_id = ?`,
			`DELETE FROM alerts WHERE line_id = ?`,
			`DELETE FROM control_commands WHERE line_id = ?`,
			`DELETE FROM ai_predictions WHERE line_id = ?`,
			`UPDATE users SET line_id = NULL WHERE line_id = ?`,
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt, lineID).Error; err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, tx, lineID)
	})
	if err != nil {
		return err
	}

	s.log.Info("line deleted", zap.String("line_id", lineID.String()))
	return nil
}

func toResponse(l *linedomain.Line) *linedomain.Response {
	return &linedomain.Response{
		ID:              l.ID.String(),
		BlockID:         l.BlockID.String(),
		LineNumber:      l.LineNumber,
		CurrentQuotaKwh: l.CurrentQuotaKwh.StringFixed(2),
		RemainingKwh:    l.RemainingKwh.StringFixed(2),
		Status:          string(l.Status),
		MaxCurrentA:     l.MaxCurrentA.StringFixed(2),
		MaxPowerW:       l.MaxPowerW.StringFixed(2),
		IdleLimitHours:  l.IdleLimitHours,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
