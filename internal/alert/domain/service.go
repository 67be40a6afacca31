package domain

import (
	"context"
	"errors"
	"time"

	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reading is the slice of a telemetry report the evaluator inspects.
type Reading struct {
	PowerW   decimal.Decimal
	CurrentA decimal.Decimal
}

// Evaluation describes one ingest cycle: the line as it was before the
// deduction, the authoritative post-deduction state, and the reading.
type Evaluation struct {
	Line    *linedomain.Line
	After   linedomain.DeductionResult
	Reading Reading
}

type Service interface {
	// Evaluate inspects one ingest cycle and persists every alert whose
	// condition holds. It runs inside the ingest transaction so alerts
	// never outlive a rolled-back reading.
	Evaluate(ctx context.Context, tx *gorm.DB, eval Evaluation) ([]Alert, error)

	// Raise persists a single alert outside the ingest path, for example
	// a top-up confirmation.
	Raise(ctx context.Context, tx *gorm.DB, lineID string, alertType AlertType, message string) (*Alert, error)

	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type ListRequest struct {
	LineID string
	Type   string
	Limit  int
}

type Response struct {
	ID        string    `json:"id"`
	LineID    string    `json:"line_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrInvalidLine = errors.New("invalid_line")
	ErrInvalidType = errors.New("invalid_alert_type")
)
