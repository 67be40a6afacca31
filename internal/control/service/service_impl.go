package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/campuswatt/gridline/internal/clock"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    controldomain.Repository
	Lines   linedomain.Repository
	Metrics *metrics.Metrics
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    controldomain.Repository
	lines   linedomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) controldomain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("control.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		lines:   p.Lines,
		metrics: p.Metrics,
	}
}

func (s *service) Enqueue(ctx context.Context, req controldomain.EnqueueRequest) (*controldomain.Response, error) {
	lineID, err := snowflake.ParseString(req.LineID)
	if err != nil {
		return nil, controldomain.ErrInvalidLine
	}

	command := controldomain.Command(req.Command)
	if command != controldomain.CommandDisconnect && command != controldomain.CommandReconnect {
		return nil, controldomain.ErrInvalidCommand
	}

	cmd := &controldomain.ControlCommand{
		ID:        s.genID.Generate(),
		LineID:    lineID,
		Command:   command,
		Status:    controldomain.StatusPending,
		CreatedAt: s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.lines.FindByID(ctx, tx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return controldomain.ErrUnknownLine
		}

		// The intent lands on the line immediately; the queued command
		// only tells the device to act on it.
		intent := linedomain.IntentNone
		if command == controldomain.CommandDisconnect {
			intent = linedomain.IntentDisconnect
		}
		status := linedomain.DeriveStatus(line.RemainingKwh, intent)
		if err := s.lines.SetAdminIntent(ctx, tx, lineID, intent, status); err != nil {
			return err
		}

		return s.repo.Insert(ctx, tx, cmd)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("command queued",
		zap.String("line_id", lineID.String()),
		zap.String("command", string(command)),
	)
	return toResponse(cmd), nil
}

func (s *service) PollAndClaim(ctx context.Context, lineID string) (*controldomain.PollResponse, error) {
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return nil, controldomain.ErrInvalidLine
	}

	line, err := s.lines.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, controldomain.ErrUnknownLine
	}
	thresholds := controldomain.Thresholds{
		MaxCurrentA:    line.MaxCurrentA.StringFixed(2),
		MaxPowerW:      line.MaxPowerW.StringFixed(2),
		IdleLimitHours: line.IdleLimitHours,
	}

	var cmd *controldomain.ControlCommand
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := s.repo.ClaimNewestPending(ctx, tx, id, s.clock.Now())
		if err != nil {
			return err
		}
		cmd = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		s.metrics.RecordCommandClaimed(ctx, string(cmd.Command))
		s.log.Info("command claimed",
			zap.String("line_id", lineID),
			zap.String("command", string(cmd.Command)),
		)
		return &controldomain.PollResponse{
			LineID:     lineID,
			Command:    string(cmd.Command),
			Thresholds: thresholds,
		}, nil
	}

	// Empty queue: answer from the persisted status so a device that
	// missed its command still converges on the right state.
	command := controldomain.CommandNone
	if line.Status == linedomain.StatusDisconnected {
		command = controldomain.CommandDisconnect
	}
	return &controldomain.PollResponse{
		LineID:     lineID,
		Command:    string(command),
		Thresholds: thresholds,
	}, nil
}

func (s *service) List(ctx context.Context, lineID string, limit int) ([]controldomain.Response, error) {
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return nil, controldomain.ErrInvalidLine
	}
	cmds, err := s.repo.List(ctx, s.db, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]controldomain.Response, 0, len(cmds))
	for i := range cmds {
		out = append(out, *toResponse(&cmds[i]))
	}
	return out, nil
}

func toResponse(c *controldomain.ControlCommand) *controldomain.Response {
	return &controldomain.Response{
		ID:         c.ID.String(),
		LineID:     c.LineID.String(),
		Command:    string(c.Command),
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		ExecutedAt: c.ExecutedAt,
	}
}
