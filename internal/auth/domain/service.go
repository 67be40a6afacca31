package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)

	// VerifySession resolves a session token back to its user.
	VerifySession(ctx context.Context, token string) (*User, error)

	GetByID(ctx context.Context, id string) (*UserResponse, error)
	List(ctx context.Context) ([]UserResponse, error)

	// Assign ties a student to the block and line they are billed for.
	Assign(ctx context.Context, req AssignRequest) (*UserResponse, error)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AssignRequest struct {
	UserID  string `json:"-"`
	BlockID string `json:"block_id"`
	LineID  string `json:"line_id"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	BlockID   string    `json:"block_id,omitempty"`
	LineID    string    `json:"line_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"-"`
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("weak_password")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("user_not_found")
	ErrInvalidAssignment  = errors.New("invalid_assignment")
)
