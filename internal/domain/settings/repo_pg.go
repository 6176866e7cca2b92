package settings

import (
	"context"
	"errors"

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

type settingRepoPG struct{ pool *pgxpool.Pool }

func NewSettingRepoPG(pool *pgxpool.Pool) SettingRepository {
	return &settingRepoPG{pool: pool}
}

func (r *settingRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const settingCols = `key, value, description, updated_at`

func scanSetting(row pgx.Row) (*SystemSetting, error) {
	var s SystemSetting
	err := row.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *settingRepoPG) Create(ctx context.Context, s *SystemSetting) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO system_settings (key, value, description) VALUES ($1,$2,$3)`,
		s.Key, s.Value, s.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
	}
	return err
}

func (r *settingRepoPG) Get(ctx context.Context, key string) (*SystemSetting, error) {
	return scanSetting(r.conn(ctx).QueryRow(ctx, `SELECT `+settingCols+` FROM system_settings WHERE key = $1`, key))
}

func (r *settingRepoPG) Upsert(ctx context.Context, s *SystemSetting) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO system_settings (key, value, description) VALUES ($1,$2,$3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, system_settings.description),
			updated_at = NOW()`,
		s.Key, s.Value, s.Description)
	return err
}

func (r *settingRepoPG) Delete(ctx context.Context, key string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM system_settings WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *settingRepoPG) List(ctx context.Context) ([]*SystemSetting, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+settingCols+` FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SystemSetting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}
