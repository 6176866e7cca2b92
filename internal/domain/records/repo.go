package records

import (
	"context"

	"github.com/google/uuid"
)

type HealthRecordRepository interface {
	Create(ctx context.Context, r *HealthRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error)
	Update(ctx context.Context, r *HealthRecord) error
	// Search filters on "student", "provider", "verified" and "diagnosis"
	// params, AND-composed, newest record date first.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*HealthRecord, int, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	// Search filters on "student" and "provider" params, newest first.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error)
}
