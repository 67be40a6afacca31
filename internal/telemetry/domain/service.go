package domain

import (
	"context"
	"errors"
	"time"

	"github.com/campuswatt/gridline/pkg/db/pagination"
)

type Service interface {
	// Ingest records one meter reading and deducts its energy from the
	// line's balance in a single transaction. The response carries the
	// authoritative post-deduction state the device must obey.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error)

	ListLogs(ctx context.Context, req ListLogsRequest) (*ListLogsResponse, error)
	UsageSummary(ctx context.Context, lineID string, since time.Time) (*UsageSummaryResponse, error)
}

type IngestRequest struct {
	LineID    string `json:"line_id"`
	Timestamp string `json:"timestamp,omitempty"`
	PowerW    string `json:"power_w"`
	VoltageV  string `json:"voltage_v"`
	CurrentA  string `json:"current_a"`
	EnergyKwh string `json:"energy_kwh"`
}

type IngestResponse struct {
	LineID       string   `json:"line_id"`
	RemainingKwh string   `json:"remaining_kwh"`
	Status       string   `json:"status"`
	Alerts       []string `json:"alerts,omitempty"`
}

type ListLogsRequest struct {
	LineID string
	Since  time.Time
	Until  time.Time
	pagination.Pagination
}

type LogResponse struct {
	ID        string    `json:"id"`
	LineID    string    `json:"line_id"`
	Timestamp time.Time `json:"timestamp"`
	PowerW    string    `json:"power_w"`
	VoltageV  string    `json:"voltage_v"`
	CurrentA  string    `json:"current_a"`
	EnergyKwh string    `json:"energy_kwh"`
}

type ListLogsResponse struct {
	Logs     []LogResponse        `json:"logs"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type UsageSummaryResponse struct {
	LineID      string     `json:"line_id"`
	TotalKwh    string     `json:"total_kwh"`
	SampleCount int64      `json:"sample_count"`
	FirstSample *time.Time `json:"first_sample,omitempty"`
	LastSample  *time.Time `json:"last_sample,omitempty"`
}

var (
	ErrInvalidLine    = errors.New("invalid_line")
	ErrUnknownLine    = errors.New("unknown_line")
	ErrInvalidReading = errors.New("invalid_reading")
)
