package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Register enrolls a device for a block and mints its token. The
	// token is returned once and only stored server-side.
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)

	// Authenticate resolves a device by its token.
	Authenticate(ctx context.Context, token string) (*Device, error)

	// AuthorizeLine checks the line belongs to the device's block. A
	// device may only report on and poll for lines it is paired with.
	AuthorizeLine(ctx context.Context, device *Device, lineID string) error

	// Heartbeat stamps the device as seen now.
	Heartbeat(ctx context.Context, token string) (*HeartbeatResponse, error)

	List(ctx context.Context, blockID string) ([]Response, error)
	Revoke(ctx context.Context, id string) error
}

type RegisterRequest struct {
	BlockID string `json:"block_id"`
	Name    string `json:"name"`
}

type RegisterResponse struct {
	Device Response `json:"device"`
	Token  string   `json:"token"`
}

type HeartbeatResponse struct {
	DeviceID string    `json:"device_id"`
	SeenAt   time.Time `json:"seen_at"`
}

type Response struct {
	ID         string     `json:"id"`
	BlockID    string     `json:"block_id"`
	Name       string     `json:"name"`
	Online     bool       `json:"online"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

var (
	ErrInvalidBlock  = errors.New("invalid_block")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidLine   = errors.New("invalid_line")
	ErrUnknownLine   = errors.New("unknown_line")
	ErrLineNotPaired = errors.New("line_not_paired")
	ErrNotFound      = errors.New("device_not_found")
	ErrUnauthorized  = errors.New("device_unauthorized")
)
