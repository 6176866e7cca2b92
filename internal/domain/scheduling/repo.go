package scheduling

import (
	"context"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// Search filters on "student", "provider", "status", "from" and "to"
	// params, AND-composed. Results are ordered by start time ascending so
	// the next upcoming visit comes first.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)
}
