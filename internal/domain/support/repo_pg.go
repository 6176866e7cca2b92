package support

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
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

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type helpRequestRepoPG struct{ pool *pgxpool.Pool }

func NewHelpRequestRepoPG(pool *pgxpool.Pool) HelpRequestRepository {
	return &helpRequestRepoPG{pool: pool}
}

const requestCols = `id, student_id, subject, description, urgency, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*HelpRequest, error) {
	var hr HelpRequest
	err := row.Scan(&hr.ID, &hr.StudentID, &hr.Subject, &hr.Description, &hr.Urgency,
		&hr.Status, &hr.CreatedAt, &hr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &hr, nil
}

func (r *helpRequestRepoPG) Create(ctx context.Context, hr *HelpRequest) error {
	hr.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO help_requests (id, student_id, subject, description, urgency, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		hr.ID, hr.StudentID, hr.Subject, hr.Description, hr.Urgency, hr.Status)
	return err
}

func (r *helpRequestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HelpRequest, error) {
	return scanRequest(connFor(ctx, r.pool).QueryRow(ctx, `SELECT `+requestCols+` FROM help_requests WHERE id = $1`, id))
}

func (r *helpRequestRepoPG) Update(ctx context.Context, hr *HelpRequest) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE help_requests SET subject=$2, description=$3, urgency=$4, status=$5, updated_at=NOW()
		WHERE id = $1`,
		hr.ID, hr.Subject, hr.Description, hr.Urgency, hr.Status)
	return err
}

func (r *helpRequestRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*HelpRequest, int, error) {
	query := `SELECT ` + requestCols + ` FROM help_requests WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM help_requests WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["student"]; ok {
		query += fmt.Sprintf(` AND student_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND student_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["urgency"]; ok {
		query += fmt.Sprintf(` AND urgency = $%d`, idx)
		countQuery += fmt.Sprintf(` AND urgency = $%d`, idx)
		args = append(args, p)
		idx++
	}

	conn := connFor(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HelpRequest
	for rows.Next() {
		hr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, hr)
	}
	return items, total, nil
}

type feedbackRepoPG struct{ pool *pgxpool.Pool }

func NewFeedbackRepoPG(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepoPG{pool: pool}
}

const feedbackCols = `id, student_id, content, rating, created_at`

func scanFeedback(row pgx.Row) (*Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.StudentID, &f.Content, &f.Rating, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *feedbackRepoPG) Create(ctx context.Context, f *Feedback) error {
	f.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO feedback (id, student_id, content, rating) VALUES ($1,$2,$3,$4)`,
		f.ID, f.StudentID, f.Content, f.Rating)
	return err
}

func (r *feedbackRepoPG) List(ctx context.Context, limit, offset int) ([]*Feedback, int, error) {
	return r.list(ctx, `WHERE 1=1`, nil, limit, offset)
}

func (r *feedbackRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Feedback, int, error) {
	return r.list(ctx, `WHERE student_id = $1`, []interface{}{studentID}, limit, offset)
}

func (r *feedbackRepoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Feedback, int, error) {
	conn := connFor(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM feedback `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	idx := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM feedback %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		feedbackCols, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}

type healthAlertRepoPG struct{ pool *pgxpool.Pool }

func NewHealthAlertRepoPG(pool *pgxpool.Pool) HealthAlertRepository {
	return &healthAlertRepoPG{pool: pool}
}

const alertCols = `id, created_by, title, message, severity, starts_at, ends_at, is_active, created_at`

func scanAlert(row pgx.Row) (*HealthAlert, error) {
	var a HealthAlert
	err := row.Scan(&a.ID, &a.CreatedBy, &a.Title, &a.Message, &a.Severity, &a.StartsAt,
		&a.EndsAt, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *healthAlertRepoPG) Create(ctx context.Context, a *HealthAlert) error {
	a.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO health_alerts (id, created_by, title, message, severity, starts_at, ends_at, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.CreatedBy, a.Title, a.Message, a.Severity, a.StartsAt, a.EndsAt, a.IsActive)
	return err
}

func (r *healthAlertRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthAlert, error) {
	return scanAlert(connFor(ctx, r.pool).QueryRow(ctx, `SELECT `+alertCols+` FROM health_alerts WHERE id = $1`, id))
}

func (r *healthAlertRepoPG) Update(ctx context.Context, a *HealthAlert) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE health_alerts SET title=$2, message=$3, severity=$4, starts_at=$5, ends_at=$6, is_active=$7
		WHERE id = $1`,
		a.ID, a.Title, a.Message, a.Severity, a.StartsAt, a.EndsAt, a.IsActive)
	return err
}

func (r *healthAlertRepoPG) ListActive(ctx context.Context, now time.Time) ([]*HealthAlert, error) {
	rows, err := connFor(ctx, r.pool).Query(ctx, `SELECT `+alertCols+` FROM health_alerts
		WHERE is_active = TRUE AND starts_at <= $1 AND (ends_at IS NULL OR ends_at >= $1)
		ORDER BY created_at DESC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HealthAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

func (r *healthAlertRepoPG) List(ctx context.Context, limit, offset int) ([]*HealthAlert, int, error) {
	conn := connFor(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM health_alerts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx, `SELECT `+alertCols+` FROM health_alerts
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}
