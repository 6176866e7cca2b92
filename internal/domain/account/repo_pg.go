package account

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

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, email, password_hash, role, is_active, created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.IsActive)
	return mapPgError(err)
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET email=$2, password_hash=$3, role=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.IsActive)
	return mapPgError(err)
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["role"]; ok {
		query += fmt.Sprintf(` AND role = $%d`, idx)
		countQuery += fmt.Sprintf(` AND role = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["active"]; ok {
		query += fmt.Sprintf(` AND is_active = $%d`, idx)
		countQuery += fmt.Sprintf(` AND is_active = $%d`, idx)
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
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

// =========== Student Profile Repository ===========

type studentProfileRepoPG struct{ pool *pgxpool.Pool }

func NewStudentProfileRepoPG(pool *pgxpool.Pool) StudentProfileRepository {
	return &studentProfileRepoPG{pool: pool}
}

func (r *studentProfileRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const studentProfileCols = `user_id, name, department, year_of_study, date_of_birth, phone`

func (r *studentProfileRepoPG) Create(ctx context.Context, p *StudentProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO student_profiles (user_id, name, department, year_of_study, date_of_birth, phone)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.UserID, p.Name, p.Department, p.YearOfStudy, p.DateOfBirth, p.Phone)
	return mapPgError(err)
}

func (r *studentProfileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*StudentProfile, error) {
	var p StudentProfile
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+studentProfileCols+` FROM student_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Name, &p.Department, &p.YearOfStudy, &p.DateOfBirth, &p.Phone)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &p, nil
}

func (r *studentProfileRepoPG) Update(ctx context.Context, p *StudentProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE student_profiles SET name=$2, department=$3, year_of_study=$4, date_of_birth=$5, phone=$6
		WHERE user_id = $1`,
		p.UserID, p.Name, p.Department, p.YearOfStudy, p.DateOfBirth, p.Phone)
	return mapPgError(err)
}

// =========== Provider Profile Repository ===========

type providerProfileRepoPG struct{ pool *pgxpool.Pool }

func NewProviderProfileRepoPG(pool *pgxpool.Pool) ProviderProfileRepository {
	return &providerProfileRepoPG{pool: pool}
}

func (r *providerProfileRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const providerProfileCols = `user_id, name, specialty, license_number, phone`

func (r *providerProfileRepoPG) Create(ctx context.Context, p *ProviderProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider_profiles (user_id, name, specialty, license_number, phone)
		VALUES ($1,$2,$3,$4,$5)`,
		p.UserID, p.Name, p.Specialty, p.LicenseNumber, p.Phone)
	return mapPgError(err)
}

func (r *providerProfileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*ProviderProfile, error) {
	var p ProviderProfile
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+providerProfileCols+` FROM provider_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Name, &p.Specialty, &p.LicenseNumber, &p.Phone)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &p, nil
}

func (r *providerProfileRepoPG) Update(ctx context.Context, p *ProviderProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE provider_profiles SET name=$2, specialty=$3, license_number=$4, phone=$5
		WHERE user_id = $1`,
		p.UserID, p.Name, p.Specialty, p.LicenseNumber, p.Phone)
	return mapPgError(err)
}
