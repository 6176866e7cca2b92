package analytics

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// resolveWindow fills in the default trailing window and rejects inverted
// ranges. A zero end means now; a zero start means end minus DefaultWindow.
func resolveWindow(start, end time.Time) (time.Time, time.Time, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.Add(-DefaultWindow)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end precedes start", ErrValidation)
	}
	return start, end, nil
}

func (s *Service) MoodDistribution(ctx context.Context, start, end time.Time) ([]*MoodCount, error) {
	start, end, err := resolveWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.repo.MoodDistribution(ctx, start, end)
}

func (s *Service) DiagnosisCounts(ctx context.Context, start, end time.Time) ([]*DiagnosisCount, error) {
	start, end, err := resolveWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.repo.DiagnosisCounts(ctx, start, end)
}

func (s *Service) AppointmentStatusCounts(ctx context.Context, start, end time.Time) ([]*StatusCount, error) {
	start, end, err := resolveWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.repo.AppointmentStatusCounts(ctx, start, end)
}

func (s *Service) AppointmentsPerProvider(ctx context.Context, start, end time.Time) ([]*ProviderCount, error) {
	start, end, err := resolveWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.repo.AppointmentsPerProvider(ctx, start, end)
}

// MoodTrend reports the average mood rating over the window and the trend
// of the per-day averages.
func (s *Service) MoodTrend(ctx context.Context, start, end time.Time) (*MoodTrendReport, error) {
	start, end, err := resolveWindow(start, end)
	if err != nil {
		return nil, err
	}
	series, err := s.repo.DailyMoodAverages(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &MoodTrendReport{
		Start:         start,
		End:           end,
		AverageRating: Average(series),
		Trend:         DetermineTrend(series),
		DailyAverages: series,
	}, nil
}

func (s *Service) Summary(ctx context.Context, start, end time.Time) (*SummaryReport, error) {
	start, end, err := resolveWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.repo.Counts(ctx, start, end)
}
