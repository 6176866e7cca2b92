package wellness

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type JournalRepository interface {
	Create(ctx context.Context, j *Journal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Journal, error)
	Update(ctx context.Context, j *Journal) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Journal, int, error)
}

type MoodLogRepository interface {
	Create(ctx context.Context, m *MoodLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*MoodLog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByStudent returns logs newest first; zero from/to means unbounded.
	ListByStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time, limit, offset int) ([]*MoodLog, int, error)
}

type EmergencyContactRepository interface {
	Create(ctx context.Context, ec *EmergencyContact) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error)
	Update(ctx context.Context, ec *EmergencyContact) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*EmergencyContact, error)
}
