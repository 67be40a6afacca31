package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/observability/metrics"
	"github.com/shopspring/decimal"
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
	Config  config.Config
	Repo    alertdomain.Repository
	Metrics *metrics.Metrics
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	cfg     config.Config
	repo    alertdomain.Repository
	metrics *metrics.Metrics
}

func New(p Params) alertdomain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("alert.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		cfg:     p.Config,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *service) Evaluate(ctx context.Context, tx *gorm.DB, eval alertdomain.Evaluation) ([]alertdomain.Alert, error) {
	line := eval.Line
	var emitted []alertdomain.Alert

	if line.Status != linedomain.StatusDisconnected && eval.After.Status == linedomain.StatusDisconnected {
		a, err := s.emit(ctx, tx, line.ID, alertdomain.TypeDisconnection,
			fmt.Sprintf("Line %d disconnected: quota exhausted (%s kWh remaining)",
				line.LineNumber, eval.After.RemainingKwh.StringFixed(2)))
		if err != nil {
			return nil, err
		}
		emitted = append(emitted, *a)
	}

	if s.lowBalance(line, eval.After) {
		ok, err := s.cooledDown(ctx, tx, line.ID, alertdomain.TypeLowBalance)
		if err != nil {
			return nil, err
		}
		if ok {
			percent := eval.After.RemainingKwh.
				Div(line.CurrentQuotaKwh).
				Mul(decimal.NewFromInt(100))
			a, err := s.emit(ctx, tx, line.ID, alertdomain.TypeLowBalance,
				fmt.Sprintf("Line %d balance low: %s kWh remaining (%s%% of quota)",
					line.LineNumber, eval.After.RemainingKwh.StringFixed(2), percent.StringFixed(1)))
			if err != nil {
				return nil, err
			}
			emitted = append(emitted, *a)
		}
	}

	if s.overloaded(line, eval.Reading) {
		ok, err := s.cooledDown(ctx, tx, line.ID, alertdomain.TypeOverload)
		if err != nil {
			return nil, err
		}
		if ok {
			a, err := s.emit(ctx, tx, line.ID, alertdomain.TypeOverload,
				fmt.Sprintf("Line %d overload: %s W at %s A (limits %s W, %s A)",
					line.LineNumber,
					eval.Reading.PowerW.String(), eval.Reading.CurrentA.String(),
					line.MaxPowerW.StringFixed(2), line.MaxCurrentA.StringFixed(2)))
			if err != nil {
				return nil, err
			}
			emitted = append(emitted, *a)
		}
	}

	return emitted, nil
}

// lowBalance holds when the balance dropped to the warning band but the
// line still has power. Exhaustion is covered by the disconnection alert.
func (s *service) lowBalance(line *linedomain.Line, after linedomain.DeductionResult) bool {
	if after.RemainingKwh.Sign() <= 0 || line.CurrentQuotaKwh.Sign() <= 0 {
		return false
	}
	threshold := line.CurrentQuotaKwh.Mul(decimal.NewFromFloat(s.cfg.LowBalanceRatio))
	return after.RemainingKwh.LessThanOrEqual(threshold)
}

func (s *service) overloaded(line *linedomain.Line, r alertdomain.Reading) bool {
	if line.MaxPowerW.Sign() > 0 && r.PowerW.GreaterThan(line.MaxPowerW) {
		return true
	}
	if line.MaxCurrentA.Sign() > 0 && r.CurrentA.GreaterThan(line.MaxCurrentA) {
		return true
	}
	return false
}

// cooledDown reports whether the per-type cooldown window has elapsed
// since the last alert of this type. A zero cooldown never suppresses.
func (s *service) cooledDown(ctx context.Context, tx *gorm.DB, lineID snowflake.ID, alertType alertdomain.AlertType) (bool, error) {
	if s.cfg.AlertCooldown <= 0 {
		return true, nil
	}
	last, err := s.repo.LastRaisedAt(ctx, tx, lineID, alertType)
	if err != nil {
		return false, err
	}
	if last.IsZero() {
		return true, nil
	}
	return s.clock.Now().Sub(last) >= s.cfg.AlertCooldown, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, lineID snowflake.ID, alertType alertdomain.AlertType, message string) (*alertdomain.Alert, error) {
	alert := &alertdomain.Alert{
		ID:        s.genID.Generate(),
		LineID:    lineID,
		Type:      alertType,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, tx, alert); err != nil {
		return nil, err
	}

	s.metrics.RecordAlertEmitted(ctx, string(alertType))
	s.log.Warn("alert raised",
		zap.String("line_id", lineID.String()),
		zap.String("type", string(alertType)),
		zap.String("message", message),
	)
	return alert, nil
}

func (s *service) Raise(ctx context.Context, tx *gorm.DB, lineID string, alertType alertdomain.AlertType, message string) (*alertdomain.Alert, error) {
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return nil, alertdomain.ErrInvalidLine
	}
	return s.emit(ctx, tx, id, alertType, message)
}

func (s *service) List(ctx context.Context, req alertdomain.ListRequest) ([]alertdomain.Response, error) {
	filter := alertdomain.ListFilter{Limit: req.Limit}
	if req.LineID != "" {
		id, err := snowflake.ParseString(req.LineID)
		if err != nil {
			return nil, alertdomain.ErrInvalidLine
		}
		filter.LineID = id
	}
	if req.Type != "" {
		switch alertdomain.AlertType(req.Type) {
		case alertdomain.TypeLowBalance, alertdomain.TypeIdleLine, alertdomain.TypeOverload,
			alertdomain.TypeDisconnection, alertdomain.TypeTopupConfirmed:
			filter.Type = alertdomain.AlertType(req.Type)
		default:
			return nil, alertdomain.ErrInvalidType
		}
	}

	alerts, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	out := make([]alertdomain.Response, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertdomain.Response{
			ID:        a.ID.String(),
			LineID:    a.LineID.String(),
			Type:      string(a.Type),
			Message:   a.Message,
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}
