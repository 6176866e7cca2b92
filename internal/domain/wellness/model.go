package wellness

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("entry not found")
	ErrValidation = errors.New("invalid entry")
)

// Journal is a free-form diary entry a student keeps for themselves.
type Journal struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MoodLog captures a mood label plus a numeric rating on a 1 to 10 scale.
// The rating feeds the trend analytics.
type MoodLog struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	Mood      string    `json:"mood"`
	Rating    int       `json:"rating"`
	Notes     *string   `json:"notes,omitempty"`
	LoggedAt  time.Time `json:"logged_at"`
}

type EmergencyContact struct {
	ID           uuid.UUID `json:"id"`
	StudentID    uuid.UUID `json:"student_id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	Email        *string   `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
