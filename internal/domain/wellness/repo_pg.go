package wellness

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

type journalRepoPG struct{ pool *pgxpool.Pool }

func NewJournalRepoPG(pool *pgxpool.Pool) JournalRepository {
	return &journalRepoPG{pool: pool}
}

const journalCols = `id, student_id, title, content, created_at, updated_at`

func scanJournal(row pgx.Row) (*Journal, error) {
	var j Journal
	err := row.Scan(&j.ID, &j.StudentID, &j.Title, &j.Content, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *journalRepoPG) Create(ctx context.Context, j *Journal) error {
	j.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO journals (id, student_id, title, content) VALUES ($1,$2,$3,$4)`,
		j.ID, j.StudentID, j.Title, j.Content)
	return err
}

func (r *journalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Journal, error) {
	return scanJournal(connFor(ctx, r.pool).QueryRow(ctx, `SELECT `+journalCols+` FROM journals WHERE id = $1`, id))
}

func (r *journalRepoPG) Update(ctx context.Context, j *Journal) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE journals SET title=$2, content=$3, updated_at=NOW() WHERE id = $1`,
		j.ID, j.Title, j.Content)
	return err
}

func (r *journalRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *journalRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Journal, int, error) {
	conn := connFor(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM journals WHERE student_id = $1`, studentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx, `SELECT `+journalCols+` FROM journals
		WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		studentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, j)
	}
	return items, total, nil
}

type moodLogRepoPG struct{ pool *pgxpool.Pool }

func NewMoodLogRepoPG(pool *pgxpool.Pool) MoodLogRepository {
	return &moodLogRepoPG{pool: pool}
}

const moodCols = `id, student_id, mood, rating, notes, logged_at`

func scanMoodLog(row pgx.Row) (*MoodLog, error) {
	var m MoodLog
	err := row.Scan(&m.ID, &m.StudentID, &m.Mood, &m.Rating, &m.Notes, &m.LoggedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *moodLogRepoPG) Create(ctx context.Context, m *MoodLog) error {
	m.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO mood_logs (id, student_id, mood, rating, notes, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.StudentID, m.Mood, m.Rating, m.Notes, m.LoggedAt)
	return err
}

func (r *moodLogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MoodLog, error) {
	return scanMoodLog(connFor(ctx, r.pool).QueryRow(ctx, `SELECT `+moodCols+` FROM mood_logs WHERE id = $1`, id))
}

func (r *moodLogRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM mood_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *moodLogRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time, limit, offset int) ([]*MoodLog, int, error) {
	query := `SELECT ` + moodCols + ` FROM mood_logs WHERE student_id = $1`
	countQuery := `SELECT COUNT(*) FROM mood_logs WHERE student_id = $1`
	args := []interface{}{studentID}
	idx := 2

	if !from.IsZero() {
		query += fmt.Sprintf(` AND logged_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND logged_at >= $%d`, idx)
		args = append(args, from)
		idx++
	}
	if !to.IsZero() {
		query += fmt.Sprintf(` AND logged_at <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND logged_at <= $%d`, idx)
		args = append(args, to)
		idx++
	}

	conn := connFor(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY logged_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MoodLog
	for rows.Next() {
		m, err := scanMoodLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

type emergencyContactRepoPG struct{ pool *pgxpool.Pool }

func NewEmergencyContactRepoPG(pool *pgxpool.Pool) EmergencyContactRepository {
	return &emergencyContactRepoPG{pool: pool}
}

const contactCols = `id, student_id, name, relationship, phone, email, created_at, updated_at`

func scanContact(row pgx.Row) (*EmergencyContact, error) {
	var ec EmergencyContact
	err := row.Scan(&ec.ID, &ec.StudentID, &ec.Name, &ec.Relationship, &ec.Phone, &ec.Email,
		&ec.CreatedAt, &ec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ec, nil
}

func (r *emergencyContactRepoPG) Create(ctx context.Context, ec *EmergencyContact) error {
	ec.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO emergency_contacts (id, student_id, name, relationship, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		ec.ID, ec.StudentID, ec.Name, ec.Relationship, ec.Phone, ec.Email)
	return err
}

func (r *emergencyContactRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error) {
	return scanContact(connFor(ctx, r.pool).QueryRow(ctx, `SELECT `+contactCols+` FROM emergency_contacts WHERE id = $1`, id))
}

func (r *emergencyContactRepoPG) Update(ctx context.Context, ec *EmergencyContact) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE emergency_contacts SET name=$2, relationship=$3, phone=$4, email=$5, updated_at=NOW()
		WHERE id = $1`,
		ec.ID, ec.Name, ec.Relationship, ec.Phone, ec.Email)
	return err
}

func (r *emergencyContactRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM emergency_contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *emergencyContactRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*EmergencyContact, error) {
	rows, err := connFor(ctx, r.pool).Query(ctx, `SELECT `+contactCols+` FROM emergency_contacts
		WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EmergencyContact
	for rows.Next() {
		ec, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ec)
	}
	return items, nil
}
