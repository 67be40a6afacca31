package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	BlockID         string `json:"block_id"`
	LineNumber      int    `json:"line_number"`
	CurrentQuotaKwh string `json:"current_quota_kwh"`
	RemainingKwh    string `json:"remaining_kwh"`
	MaxCurrentA     string `json:"max_current_a"`
	MaxPowerW       string `json:"max_power_w"`
	IdleLimitHours  *int   `json:"idle_limit_hours"`
}

type UpdateRequest struct {
	ID              string  `json:"id"`
	CurrentQuotaKwh *string `json:"current_quota_kwh,omitempty"`
	MaxCurrentA     *string `json:"max_current_a,omitempty"`
	MaxPowerW       *string `json:"max_power_w,omitempty"`
	IdleLimitHours  *int    `json:"idle_limit_hours,omitempty"`
}

type ListRequest struct {
	BlockID string
}

type Response struct {
	ID              string    `json:"id"`
	BlockID         string    `json:"block_id"`
	LineNumber      int       `json:"line_number"`
	CurrentQuotaKwh string    `json:"current_quota_kwh"`
	RemainingKwh    string    `json:"remaining_kwh"`
	Status          string    `json:"status"`
	MaxCurrentA     string    `json:"max_current_a"`
	MaxPowerW       string    `json:"max_power_w"`
	IdleLimitHours  int       `json:"idle_limit_hours"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	ErrInvalidBlock      = errors.New("invalid_block")
	ErrInvalidLineNumber = errors.New("invalid_line_number")
	ErrInvalidQuota      = errors.New("invalid_quota")
	ErrInvalidThreshold  = errors.New("invalid_threshold")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("line_not_found")
	ErrLineExists        = errors.New("line_exists")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

// ParseKwh parses a non-negative decimal quantity of energy.
func ParseKwh(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil || d.Sign() < 0 {
		return decimal.Zero, ErrInvalidQuota
	}
	return d, nil
}
