// Package domain contains the user account model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// User is a dashboard account. A student is tied to the block and line
// they are billed for; admins carry no assignment.
type User struct {
	ID           snowflake.ID  `json:"id" gorm:"primaryKey"`
	Email        string        `json:"email" gorm:"type:text;not null;uniqueIndex:ux_users_email"`
	PasswordHash string        `json:"-" gorm:"type:text;not null"`
	Name         string        `json:"name" gorm:"type:text;not null"`
	Role         Role          `json:"role" gorm:"type:text;not null;default:student"`
	BlockID      *snowflake.ID `json:"block_id,omitempty"`
	LineID       *snowflake.ID `json:"line_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
