package support

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("status does not allow this change")
	ErrValidation = errors.New("invalid input")
)

// RequestStatus is the lifecycle state of a help request. Staff move
// requests forward; the table below is the only legal set of moves.
type RequestStatus string

const (
	StatusOpen       RequestStatus = "OPEN"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusResolved   RequestStatus = "RESOLVED"
	StatusClosed     RequestStatus = "CLOSED"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	StatusOpen:       {StatusInProgress, StatusClosed},
	StatusInProgress: {StatusResolved, StatusClosed},
	StatusResolved:   {StatusClosed},
	// CLOSED is terminal.
}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type HelpRequest struct {
	ID          uuid.UUID     `json:"id"`
	StudentID   uuid.UUID     `json:"student_id"`
	Subject     string        `json:"subject"`
	Description string        `json:"description"`
	Urgency     *string       `json:"urgency,omitempty"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Feedback is a rated comment a student leaves about the service. Ratings
// run 1 to 5.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthAlert is a broadcast from staff or providers, visible to students
// while active and inside its display window.
type HealthAlert struct {
	ID        uuid.UUID  `json:"id"`
	CreatedBy uuid.UUID  `json:"created_by"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Severity  string     `json:"severity"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}
