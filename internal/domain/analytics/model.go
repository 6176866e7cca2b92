package analytics

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("invalid analytics query")

// DefaultWindow is how far back reports look when no range is given.
const DefaultWindow = 30 * 24 * time.Hour

type MoodCount struct {
	Mood      string  `json:"mood"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

type DiagnosisCount struct {
	Diagnosis string `json:"diagnosis"`
	Count     int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ProviderCount struct {
	ProviderID uuid.UUID `json:"provider_id"`
	Count      int       `json:"count"`
}

// SummaryReport is the at-a-glance view for administrators.
type SummaryReport struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	NewUsers      int       `json:"new_users"`
	Appointments  int       `json:"appointments"`
	HealthRecords int       `json:"health_records"`
	MoodLogs      int       `json:"mood_logs"`
}

// MoodTrendReport pairs the average rating over the window with the trend
// direction of the daily averages.
type MoodTrendReport struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AverageRating float64   `json:"average_rating"`
	Trend         string    `json:"trend"`
	DailyAverages []float64 `json:"daily_averages"`
}
