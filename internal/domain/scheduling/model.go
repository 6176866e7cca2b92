package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("appointment not found")
	ErrConflict   = errors.New("appointment status does not allow this change")
	ErrValidation = errors.New("invalid appointment")
)

// Status is the lifecycle state of an appointment. Every status change goes
// through the transition table; anything not listed there is rejected with
// ErrConflict.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	// COMPLETED and CANCELLED are terminal.
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition table allows moving from s
// to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a visit a student books with a provider. New appointments
// always start as PENDING regardless of what the client submits.
type Appointment struct {
	ID                 uuid.UUID `json:"id"`
	StudentID          uuid.UUID `json:"student_id"`
	ProviderID         uuid.UUID `json:"provider_id"`
	StartTime          time.Time `json:"start_time"`
	Reason             *string   `json:"reason,omitempty"`
	Priority           *string   `json:"priority,omitempty"`
	Status             Status    `json:"status"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
