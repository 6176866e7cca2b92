package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrConflict           = errors.New("email already registered")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is an authenticated account. The role decides which API surface the
// account may reach; student and provider accounts carry a profile row.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentProfile holds student-specific attributes keyed by user id.
type StudentProfile struct {
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Department  *string    `json:"department,omitempty"`
	YearOfStudy *int       `json:"year_of_study,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
}

// ProviderProfile holds provider-specific attributes keyed by user id.
type ProviderProfile struct {
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Specialty     *string   `json:"specialty,omitempty"`
	LicenseNumber *string   `json:"license_number,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
}
