// Package domain contains the device command queue model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Command string

const (
	CommandDisconnect Command = "disconnect"
	CommandReconnect  Command = "reconnect"
	// CommandNone is the poll answer when nothing is queued. It is never
	// persisted.
	CommandNone Command = "none"
)

type CommandStatus string

const (
	StatusPending  CommandStatus = "pending"
	StatusExecuted CommandStatus = "executed"
	// StatusSuperseded marks a pending command skipped because a newer
	// one for the same line was claimed first.
	StatusSuperseded CommandStatus = "superseded"
)

// ControlCommand is one queued operator instruction. A command is
// delivered to the device at most once: the first poll claims the
// newest pending command and flips it to executed, and any older
// pending commands for the line are superseded in the same claim.
type ControlCommand struct {
	ID      snowflake.ID  `json:"id" gorm:"primaryKey"`
	LineID  snowflake.ID  `json:"line_id" gorm:"not null;index:ix_commands_line_status,priority:1"`
	Command Command       `json:"command" gorm:"type:text;not null"`
	Status  CommandStatus `json:"status" gorm:"type:text;not null;default:pending;index:ix_commands_line_status,priority:2"`

	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

// TableName sets the database table name.
func (ControlCommand) TableName() string { return "control_commands" }
