package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	"github.com/campuswatt/gridline/internal/clock"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/observability/metrics"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    topupdomain.Repository
	Lines   linedomain.Repository
	Alerts  alertdomain.Service
	Metrics *metrics.Metrics
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    topupdomain.Repository
	lines   linedomain.Repository
	alerts  alertdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) topupdomain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("topup.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		lines:   p.Lines,
		alerts:  p.Alerts,
		metrics: p.Metrics,
	}
}

func (s *service) Initialize(ctx context.Context, req topupdomain.InitializeRequest) (*topupdomain.Response, error) {
	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		return nil, topupdomain.ErrInvalidLine
	}
	lineID, err := snowflake.ParseString(req.LineID)
	if err != nil {
		return nil, topupdomain.ErrInvalidLine
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return nil, topupdomain.ErrInvalidAmount
	}
	units, err := decimal.NewFromString(req.Units)
	if err != nil || units.Sign() <= 0 {
		return nil, topupdomain.ErrInvalidUnits
	}

	line, err := s.lines.FindByID(ctx, s.db, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, topupdomain.ErrUnknownLine
	}

	payment := &topupdomain.Payment{
		ID:            s.genID.Generate(),
		UserID:        userID,
		LineID:        lineID,
		Amount:        amount,
		UnitsAddedKwh: units,
		Status:        topupdomain.StatusPending,
		Reference:     uuid.NewString(),
		CreatedAt:     s.clock.Now(),
	}
	if len(req.Metadata) > 0 {
		payment.Metadata = datatypes.JSONMap{}
		for k, v := range req.Metadata {
			payment.Metadata[k] = v
		}
	}

	if err := s.repo.Insert(ctx, s.db, payment); err != nil {
		s.log.Error("failed to open payment", zap.Error(err))
		return nil, err
	}

	s.log.Info("payment opened",
		zap.String("reference", payment.Reference),
		zap.String("line_id", lineID.String()),
		zap.String("units_kwh", units.String()),
	)
	return toResponse(payment), nil
}

func (s *service) Verify(ctx context.Context, req topupdomain.VerifyRequest) (*topupdomain.VerifyResponse, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, topupdomain.ErrInvalidReference
	}

	var resp *topupdomain.VerifyResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := s.repo.ClaimPending(ctx, tx, reference, s.clock.Now())
		if err != nil {
			return err
		}

		payment, err := s.repo.FindByReference(ctx, tx, reference)
		if err != nil {
			return err
		}
		if payment == nil {
			return topupdomain.ErrNotFound
		}

		if !claimed {
			if payment.Status == topupdomain.StatusCompleted {
				return topupdomain.ErrAlreadyProcessed
			}
			return topupdomain.ErrPaymentFailed
		}

		result, err := s.lines.Credit(ctx, tx, payment.LineID, payment.UnitsAddedKwh)
		if err != nil {
			return err
		}
		if result == nil {
			return topupdomain.ErrUnknownLine
		}

		_, err = s.alerts.Raise(ctx, tx, payment.LineID.String(), alertdomain.TypeTopupConfirmed,
			fmt.Sprintf("Top-up confirmed: %s kWh added (%s kWh remaining)",
				payment.UnitsAddedKwh.StringFixed(2), result.RemainingKwh.StringFixed(2)))
		if err != nil {
			return err
		}

		resp = &topupdomain.VerifyResponse{
			Payment:      *toResponse(payment),
			RemainingKwh: result.RemainingKwh.StringFixed(2),
			LineStatus:   string(result.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTopUpVerified(ctx)
	s.log.Info("payment verified",
		zap.String("reference", reference),
		zap.String("line_id", resp.Payment.LineID),
		zap.String("units_kwh", resp.Payment.UnitsAddedKwh),
		zap.String("remaining_kwh", resp.RemainingKwh),
	)
	return resp, nil
}

func (s *service) List(ctx context.Context, req topupdomain.ListRequest) ([]topupdomain.Response, error) {
	var userID, lineID snowflake.ID
	if req.UserID != "" {
		id, err := snowflake.ParseString(req.UserID)
		if err != nil {
			return nil, topupdomain.ErrInvalidLine
		}
		userID = id
	}
	if req.LineID != "" {
		id, err := snowflake.ParseString(req.LineID)
		if err != nil {
			return nil, topupdomain.ErrInvalidLine
		}
		lineID = id
	}

	payments, err := s.repo.List(ctx, s.db, userID, lineID, req.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]topupdomain.Response, 0, len(payments))
	for i := range payments {
		out = append(out, *toResponse(&payments[i]))
	}
	return out, nil
}

func toResponse(p *topupdomain.Payment) *topupdomain.Response {
	return &topupdomain.Response{
		ID:            p.ID.String(),
		UserID:        p.UserID.String(),
		LineID:        p.LineID.String(),
		Amount:        p.Amount.StringFixed(2),
		UnitsAddedKwh: p.UnitsAddedKwh.StringFixed(2),
		Status:        string(p.Status),
		Reference:     p.Reference,
		CreatedAt:     p.CreatedAt,
		VerifiedAt:    p.VerifiedAt,
	}
}
