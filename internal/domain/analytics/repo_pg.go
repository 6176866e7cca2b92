package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushealth/campushealth/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) MoodDistribution(ctx context.Context, start, end time.Time) ([]*MoodCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT mood, COUNT(*), AVG(rating)::float8
		FROM mood_logs
		WHERE logged_at >= $1 AND logged_at <= $2
		GROUP BY mood ORDER BY COUNT(*) DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MoodCount
	for rows.Next() {
		var m MoodCount
		if err := rows.Scan(&m.Mood, &m.Count, &m.AvgRating); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *repoPG) DiagnosisCounts(ctx context.Context, start, end time.Time) ([]*DiagnosisCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT diagnosis, COUNT(*)
		FROM health_records
		WHERE record_date >= $1 AND record_date <= $2
		GROUP BY diagnosis ORDER BY COUNT(*) DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*DiagnosisCount
	for rows.Next() {
		var d DiagnosisCount
		if err := rows.Scan(&d.Diagnosis, &d.Count); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *repoPG) AppointmentStatusCounts(ctx context.Context, start, end time.Time) ([]*StatusCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		WHERE start_time >= $1 AND start_time <= $2
		GROUP BY status ORDER BY COUNT(*) DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StatusCount
	for rows.Next() {
		var s StatusCount
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *repoPG) AppointmentsPerProvider(ctx context.Context, start, end time.Time) ([]*ProviderCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT provider_id, COUNT(*)
		FROM appointments
		WHERE start_time >= $1 AND start_time <= $2
		GROUP BY provider_id ORDER BY COUNT(*) DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ProviderCount
	for rows.Next() {
		var p ProviderCount
		if err := rows.Scan(&p.ProviderID, &p.Count); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *repoPG) DailyMoodAverages(ctx context.Context, start, end time.Time) ([]float64, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT AVG(rating)::float8
		FROM mood_logs
		WHERE logged_at >= $1 AND logged_at <= $2
		GROUP BY DATE(logged_at) ORDER BY DATE(logged_at)`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var series []float64
	for rows.Next() {
		var avg float64
		if err := rows.Scan(&avg); err != nil {
			return nil, err
		}
		series = append(series, avg)
	}
	return series, rows.Err()
}

func (r *repoPG) Counts(ctx context.Context, start, end time.Time) (*SummaryReport, error) {
	report := &SummaryReport{Start: start, End: end}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at <= $2),
			(SELECT COUNT(*) FROM appointments WHERE start_time >= $1 AND start_time <= $2),
			(SELECT COUNT(*) FROM health_records WHERE record_date >= $1 AND record_date <= $2),
			(SELECT COUNT(*) FROM mood_logs WHERE logged_at >= $1 AND logged_at <= $2)`,
		start, end).Scan(&report.NewUsers, &report.Appointments, &report.HealthRecords, &report.MoodLogs)
	if err != nil {
		return nil, err
	}
	return report, nil
}
