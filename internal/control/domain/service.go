package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Enqueue queues a command and applies the operator intent to the
	// line immediately, so the dashboard reflects the instruction before
	// the device has polled.
	Enqueue(ctx context.Context, req EnqueueRequest) (*Response, error)

	// PollAndClaim hands the newest pending command for a line to the
	// caller, marking it executed and superseding anything older in the
	// same claim. With an empty queue it answers from the line's
	// persisted status instead.
	PollAndClaim(ctx context.Context, lineID string) (*PollResponse, error)

	List(ctx context.Context, lineID string, limit int) ([]Response, error)
}

type EnqueueRequest struct {
	LineID  string `json:"line_id"`
	Command string `json:"command"`
}

type Response struct {
	ID         string     `json:"id"`
	LineID     string     `json:"line_id"`
	Command    string     `json:"command"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

type PollResponse struct {
	LineID     string     `json:"line_id"`
	Command    string     `json:"command"`
	Thresholds Thresholds `json:"thresholds"`
}

// Thresholds echoes the line's device limits so the meter can enforce
// them locally between polls.
type Thresholds struct {
	MaxCurrentA    string `json:"max_current_a"`
	MaxPowerW      string `json:"max_power_w"`
	IdleLimitHours int    `json:"idle_limit_hours"`
}

var (
	ErrInvalidLine    = errors.New("invalid_line")
	ErrUnknownLine    = errors.New("unknown_line")
	ErrInvalidCommand = errors.New("invalid_command")
)
