package analytics

import (
	"context"
	"time"
)

// Repository runs the aggregate queries behind the reports. All methods
// bound their scans to [start, end].
type Repository interface {
	MoodDistribution(ctx context.Context, start, end time.Time) ([]*MoodCount, error)
	DiagnosisCounts(ctx context.Context, start, end time.Time) ([]*DiagnosisCount, error)
	AppointmentStatusCounts(ctx context.Context, start, end time.Time) ([]*StatusCount, error)
	AppointmentsPerProvider(ctx context.Context, start, end time.Time) ([]*ProviderCount, error)
	// DailyMoodAverages returns one average rating per day that has logs,
	// oldest day first.
	DailyMoodAverages(ctx context.Context, start, end time.Time) ([]float64, error)
	Counts(ctx context.Context, start, end time.Time) (*SummaryReport, error)
}
