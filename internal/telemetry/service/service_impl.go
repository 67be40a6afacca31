package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	"github.com/campuswatt/gridline/internal/clock"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/internal/observability/metrics"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	"github.com/campuswatt/gridline/pkg/db/pagination"
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
	Repo    telemetrydomain.Repository
	Lines   linedomain.Repository
	Alerts  alertdomain.Service
	Metrics *metrics.Metrics
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    telemetrydomain.Repository
	lines   linedomain.Repository
	alerts  alertdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) telemetrydomain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("telemetry.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		lines:   p.Lines,
		alerts:  p.Alerts,
		metrics: p.Metrics,
	}
}

func (s *service) Ingest(ctx context.Context, req telemetrydomain.IngestRequest) (*telemetrydomain.IngestResponse, error) {
	lineID, err := snowflake.ParseString(req.LineID)
	if err != nil {
		s.metrics.RecordTelemetryIngest(ctx, "invalid")
		return nil, telemetrydomain.ErrInvalidLine
	}

	energy, err := parseReading(req.EnergyKwh)
	if err != nil {
		s.metrics.RecordTelemetryIngest(ctx, "invalid")
		return nil, err
	}
	power, err := parseReading(req.PowerW)
	if err != nil {
		s.metrics.RecordTelemetryIngest(ctx, "invalid")
		return nil, err
	}
	voltage, err := parseReading(req.VoltageV)
	if err != nil {
		s.metrics.RecordTelemetryIngest(ctx, "invalid")
		return nil, err
	}
	current, err := parseReading(req.CurrentA)
	if err != nil {
		s.metrics.RecordTelemetryIngest(ctx, "invalid")
		return nil, err
	}

	ts := s.clock.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			s.metrics.RecordTelemetryIngest(ctx, "invalid")
			return nil, telemetrydomain.ErrInvalidReading
		}
		ts = parsed.UTC()
	}

	var resp *telemetrydomain.IngestResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.lines.FindByID(ctx, tx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return telemetrydomain.ErrUnknownLine
		}

		entry := &telemetrydomain.EnergyLog{
			ID:        s.genID.Generate(),
			LineID:    lineID,
			Timestamp: ts,
			PowerW:    power,
			VoltageV:  voltage,
			CurrentA:  current,
			EnergyKwh: energy,
			CreatedAt: s.clock.Now(),
		}
		if err := s.repo.Insert(ctx, tx, entry); err != nil {
			return err
		}

		result, err := s.lines.ApplyConsumption(ctx, tx, lineID, energy)
		if err != nil {
			return err
		}
		if result == nil {
			return telemetrydomain.ErrUnknownLine
		}

		emitted, err := s.alerts.Evaluate(ctx, tx, alertdomain.Evaluation{
			Line:    line,
			After:   *result,
			Reading: alertdomain.Reading{PowerW: power, CurrentA: current},
		})
		if err != nil {
			return err
		}

		resp = &telemetrydomain.IngestResponse{
			LineID:       lineID.String(),
			RemainingKwh: result.RemainingKwh.StringFixed(2),
			Status:       string(result.Status),
		}
		for _, a := range emitted {
			resp.Alerts = append(resp.Alerts, string(a.Type))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, telemetrydomain.ErrUnknownLine) {
			s.metrics.RecordTelemetryIngest(ctx, "unknown_line")
		} else {
			s.metrics.RecordTelemetryIngest(ctx, "error")
			s.log.Error("telemetry ingest failed",
				zap.String("line_id", req.LineID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.RecordTelemetryIngest(ctx, "ok")
	s.log.Debug("telemetry ingested",
		zap.String("line_id", resp.LineID),
		zap.String("energy_kwh", energy.String()),
		zap.String("remaining_kwh", resp.RemainingKwh),
		zap.String("status", resp.Status),
	)
	return resp, nil
}

func (s *service) ListLogs(ctx context.Context, req telemetrydomain.ListLogsRequest) (*telemetrydomain.ListLogsResponse, error) {
	lineID, err := snowflake.ParseString(req.LineID)
	if err != nil {
		return nil, telemetrydomain.ErrInvalidLine
	}

	query := telemetrydomain.LogQuery{
		LineID: lineID,
		Since:  req.Since,
		Until:  req.Until,
		Limit:  req.PageSize,
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, telemetrydomain.ErrInvalidLine
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, telemetrydomain.ErrInvalidLine
		}
		query.AfterID = afterID
	}

	logs, err := s.repo.List(ctx, s.db, query)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	hasMore := len(logs) > limit
	if hasMore {
		logs = logs[:limit]
	}

	resp := &telemetrydomain.ListLogsResponse{
		Logs:     make([]telemetrydomain.LogResponse, 0, len(logs)),
		PageInfo: &pagination.PageInfo{HasMore: hasMore},
	}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, telemetrydomain.LogResponse{
			ID:        l.ID.String(),
			LineID:    l.LineID.String(),
			Timestamp: l.Timestamp,
			PowerW:    l.PowerW.StringFixed(2),
			VoltageV:  l.VoltageV.StringFixed(2),
			CurrentA:  l.CurrentA.StringFixed(2),
			EnergyKwh: l.EnergyKwh.StringFixed(4),
		})
	}
	if hasMore && len(logs) > 0 {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: logs[len(logs)-1].ID.String()})
		if err != nil {
			return nil, err
		}
		resp.PageInfo.NextPageToken = token
	}
	return resp, nil
}

func (s *service) UsageSummary(ctx context.Context, lineID string, since time.Time) (*telemetrydomain.UsageSummaryResponse, error) {
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return nil, telemetrydomain.ErrInvalidLine
	}

	window, err := s.repo.Usage(ctx, s.db, id, since)
	if err != nil {
		return nil, err
	}
	return &telemetrydomain.UsageSummaryResponse{
		LineID:      lineID,
		TotalKwh:    window.TotalKwh.StringFixed(4),
		SampleCount: window.SampleCount,
		FirstSample: window.FirstSample,
		LastSample:  window.LastSample,
	}, nil
}

func parseReading(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil || d.Sign() < 0 {
		return decimal.Zero, telemetrydomain.ErrInvalidReading
	}
	return d, nil
}
