package records

import (
	"context"
	"errors"
	"fmt"

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

type healthRecordRepoPG struct{ pool *pgxpool.Pool }

func NewHealthRecordRepoPG(pool *pgxpool.Pool) HealthRecordRepository {
	return &healthRecordRepoPG{pool: pool}
}

func (r *healthRecordRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, student_id, provider_id, diagnosis, treatment, notes,
	confidentiality, is_verified, record_date, created_at, updated_at`

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	var rec HealthRecord
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.ProviderID, &rec.Diagnosis, &rec.Treatment,
		&rec.Notes, &rec.Confidentiality, &rec.IsVerified, &rec.RecordDate, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *healthRecordRepoPG) Create(ctx context.Context, rec *HealthRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO health_records (id, student_id, provider_id, diagnosis, treatment, notes,
			confidentiality, is_verified, record_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.StudentID, rec.ProviderID, rec.Diagnosis, rec.Treatment, rec.Notes,
		rec.Confidentiality, rec.IsVerified, rec.RecordDate)
	return err
}

func (r *healthRecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM health_records WHERE id = $1`, id))
}

func (r *healthRecordRepoPG) Update(ctx context.Context, rec *HealthRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_records SET diagnosis=$2, treatment=$3, notes=$4, confidentiality=$5,
			is_verified=$6, record_date=$7, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Diagnosis, rec.Treatment, rec.Notes, rec.Confidentiality,
		rec.IsVerified, rec.RecordDate)
	return err
}

func (r *healthRecordRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*HealthRecord, int, error) {
	query := `SELECT ` + recordCols + ` FROM health_records WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM health_records WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["student"]; ok {
		query += fmt.Sprintf(` AND student_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND student_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["provider"]; ok {
		query += fmt.Sprintf(` AND provider_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND provider_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["verified"]; ok {
		query += fmt.Sprintf(` AND is_verified = $%d`, idx)
		countQuery += fmt.Sprintf(` AND is_verified = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}
	if p, ok := params["diagnosis"]; ok {
		query += fmt.Sprintf(` AND diagnosis ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND diagnosis ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY record_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, nil
}

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const prescriptionCols = `id, student_id, provider_id, medication, dosage, frequency,
	start_date, end_date, instructions, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.StudentID, &p.ProviderID, &p.Medication, &p.Dosage, &p.Frequency,
		&p.StartDate, &p.EndDate, &p.Instructions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, student_id, provider_id, medication, dosage, frequency,
			start_date, end_date, instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.StudentID, p.ProviderID, p.Medication, p.Dosage, p.Frequency,
		p.StartDate, p.EndDate, p.Instructions)
	return err
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescriptions WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET medication=$2, dosage=$3, frequency=$4, start_date=$5,
			end_date=$6, instructions=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Medication, p.Dosage, p.Frequency, p.StartDate, p.EndDate, p.Instructions)
	return err
}

func (r *prescriptionRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error) {
	query := `SELECT ` + prescriptionCols + ` FROM prescriptions WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM prescriptions WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["student"]; ok {
		query += fmt.Sprintf(` AND student_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND student_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["provider"]; ok {
		query += fmt.Sprintf(` AND provider_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND provider_id = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}
