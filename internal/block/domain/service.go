package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name          string `json:"name"`
	TotalQuotaKwh string `json:"total_quota_kwh"`
}

type UpdateRequest struct {
	ID            string  `json:"id"`
	Name          *string `json:"name,omitempty"`
	TotalQuotaKwh *string `json:"total_quota_kwh,omitempty"`
}

type Response struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TotalQuotaKwh string    `json:"total_quota_kwh"`
	LineCount     int       `json:"line_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidQuota = errors.New("invalid_quota")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("block_not_found")
	ErrBlockExists  = errors.New("block_exists")
)
