package settings

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("setting not found")
	ErrConflict   = errors.New("setting already exists")
	ErrValidation = errors.New("invalid setting")
)

// SystemSetting is a key/value pair operators tune at runtime, such as
// booking windows or feature toggles.
type SystemSetting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
