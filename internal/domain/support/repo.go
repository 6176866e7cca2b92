package support

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type HelpRequestRepository interface {
	Create(ctx context.Context, hr *HelpRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*HelpRequest, error)
	Update(ctx context.Context, hr *HelpRequest) error
	// Search filters on "student", "status" and "urgency" params, newest
	// first.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*HelpRequest, int, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	List(ctx context.Context, limit, offset int) ([]*Feedback, int, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Feedback, int, error)
}

type HealthAlertRepository interface {
	Create(ctx context.Context, a *HealthAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthAlert, error)
	Update(ctx context.Context, a *HealthAlert) error
	// ListActive returns alerts that are flagged active and whose display
	// window contains now.
	ListActive(ctx context.Context, now time.Time) ([]*HealthAlert, error)
	List(ctx context.Context, limit, offset int) ([]*HealthAlert, int, error)
}
