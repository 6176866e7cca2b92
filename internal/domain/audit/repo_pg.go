package audit

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

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type activityLogRepoPG struct{ pool *pgxpool.Pool }

func NewActivityLogRepoPG(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepoPG{pool: pool}
}

const activityCols = `id, user_id, action, detail, ip, created_at`

func scanActivity(row pgx.Row) (*ActivityLog, error) {
	var e ActivityLog
	err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.Detail, &e.IP, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *activityLogRepoPG) Create(ctx context.Context, e *ActivityLog) error {
	e.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO activity_logs (id, user_id, action, detail, ip) VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.UserID, e.Action, e.Detail, e.IP)
	return err
}

func (r *activityLogRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*ActivityLog, int, error) {
	query := `SELECT ` + activityCols + ` FROM activity_logs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM activity_logs WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["user"]; ok {
		query += fmt.Sprintf(` AND user_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND user_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["action"]; ok {
		query += fmt.Sprintf(` AND action = $%d`, idx)
		countQuery += fmt.Sprintf(` AND action = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["from"]; ok {
		query += fmt.Sprintf(` AND created_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["to"]; ok {
		query += fmt.Sprintf(` AND created_at <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at <= $%d`, idx)
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
	var items []*ActivityLog
	for rows.Next() {
		e, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}

type systemLogRepoPG struct{ pool *pgxpool.Pool }

func NewSystemLogRepoPG(pool *pgxpool.Pool) SystemLogRepository {
	return &systemLogRepoPG{pool: pool}
}

const systemCols = `id, level, source, message, context, created_at`

func scanSystem(row pgx.Row) (*SystemLog, error) {
	var e SystemLog
	err := row.Scan(&e.ID, &e.Level, &e.Source, &e.Message, &e.Context, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *systemLogRepoPG) Create(ctx context.Context, e *SystemLog) error {
	e.ID = uuid.New()
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		INSERT INTO system_logs (id, level, source, message, context) VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.Level, e.Source, e.Message, e.Context)
	return err
}

func (r *systemLogRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*SystemLog, int, error) {
	query := `SELECT ` + systemCols + ` FROM system_logs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM system_logs WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["level"]; ok {
		query += fmt.Sprintf(` AND level = $%d`, idx)
		countQuery += fmt.Sprintf(` AND level = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["source"]; ok {
		query += fmt.Sprintf(` AND source = $%d`, idx)
		countQuery += fmt.Sprintf(` AND source = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["from"]; ok {
		query += fmt.Sprintf(` AND created_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at >= $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["to"]; ok {
		query += fmt.Sprintf(` AND created_at <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at <= $%d`, idx)
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
	var items []*SystemLog
	for rows.Next() {
		e, err := scanSystem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}
