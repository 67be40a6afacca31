// Package sweeper flags lines that stopped reporting consumption.
package sweeper

import (
	"context"
	"fmt"
	"time"

	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Config    config.Config
	Lines     linedomain.Repository
	Telemetry telemetrydomain.Repository
	Alerts    alertdomain.Service
}

// Sweeper periodically marks active lines idle when they have not
// reported within their idle limit. Telemetry arriving later flips the
// line back to active on its own.
type Sweeper struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	interval  time.Duration
	lines     linedomain.Repository
	telemetry telemetrydomain.Repository
	alerts    alertdomain.Service
}

func New(p Params) *Sweeper {
	s := &Sweeper{
		db:        p.DB,
		log:       p.Log.Named("alert.sweeper"),
		clock:     p.Clock,
		interval:  p.Config.IdleSweepInterval,
		lines:     p.Lines,
		telemetry: p.Telemetry,
		alerts:    p.Alerts,
	}

	if s.interval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go s.run(ctx, done)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				<-done
				return nil
			},
		})
	}
	return s
}

func (s *Sweeper) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flagged, err := s.Sweep(ctx)
			if err != nil {
				s.log.Error("idle sweep failed", zap.Error(err))
			} else if flagged > 0 {
				s.log.Info("idle sweep flagged lines", zap.Int("count", flagged))
			}
		}
	}
}

// Sweep runs one pass and returns how many lines it flagged.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	lines, err := s.lines.List(ctx, s.db, 0)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	flagged := 0
	for i := range lines {
		line := &lines[i]
		if line.Status != linedomain.StatusActive || line.IdleLimitHours <= 0 {
			continue
		}

		lastSeen, err := s.telemetry.LastReportedAt(ctx, s.db, line.ID)
		if err != nil {
			return flagged, err
		}
		if lastSeen.IsZero() {
			lastSeen = line.CreatedAt
		}
		if now.Sub(lastSeen) < time.Duration(line.IdleLimitHours)*time.Hour {
			continue
		}

		idled, err := s.lines.MarkIdle(ctx, s.db, line.ID)
		if err != nil {
			return flagged, err
		}
		if !idled {
			continue
		}

		_, err = s.alerts.Raise(ctx, s.db, line.ID.String(), alertdomain.TypeIdleLine,
			fmt.Sprintf("Line %d idle: no consumption reported for over %d hours",
				line.LineNumber, line.IdleLimitHours))
		if err != nil {
			return flagged, err
		}
		flagged++
	}
	return flagged, nil
}

var Module = fx.Module("alert.sweeper",
	fx.Provide(New),
	fx.Invoke(func(*Sweeper) {}),
)
