package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Initialize opens a pending payment and returns the reference the
	// payer settles against.
	Initialize(ctx context.Context, req InitializeRequest) (*Response, error)

	// Verify settles the payment named by reference and credits the line
	// in one transaction. A reference that was already settled fails
	// with already_processed and never credits twice.
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error)

	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type InitializeRequest struct {
	UserID   string            `json:"-"`
	LineID   string            `json:"line_id"`
	Amount   string            `json:"amount"`
	Units    string            `json:"units_kwh"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type VerifyRequest struct {
	Reference string `json:"reference"`
}

type Response struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	LineID        string     `json:"line_id"`
	Amount        string     `json:"amount"`
	UnitsAddedKwh string     `json:"units_added_kwh"`
	Status        string     `json:"status"`
	Reference     string     `json:"reference"`
	CreatedAt     time.Time  `json:"created_at"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

type VerifyResponse struct {
	Payment      Response `json:"payment"`
	RemainingKwh string   `json:"remaining_kwh"`
	LineStatus   string   `json:"line_status"`
}

type ListRequest struct {
	UserID string
	LineID string
	Limit  int
}

var (
	ErrInvalidLine      = errors.New("invalid_line")
	ErrUnknownLine      = errors.New("unknown_line")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidUnits     = errors.New("invalid_units")
	ErrInvalidReference = errors.New("invalid_reference")
	ErrNotFound         = errors.New("payment_not_found")
	ErrAlreadyProcessed = errors.New("already_processed")
	ErrPaymentFailed    = errors.New("payment_failed")
)
