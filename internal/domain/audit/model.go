package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("log entry not found")
	ErrValidation = errors.New("invalid log entry")
)

// ActivityLog is a user-attributed audit trail entry.
type ActivityLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	Detail    *string   `json:"detail,omitempty"`
	IP        *string   `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LogLevel classifies system log entries.
type LogLevel string

const (
	LevelDebug    LogLevel = "DEBUG"
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"
)

func (l LogLevel) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical:
		return true
	}
	return false
}

// SystemLog is an operator-facing event not tied to a single user.
type SystemLog struct {
	ID        uuid.UUID `json:"id"`
	Level     LogLevel  `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Context   *string   `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
