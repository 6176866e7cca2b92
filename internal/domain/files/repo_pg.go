package files

import (
	"context"
	"errors"

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

type fileMetadataRepoPG struct{ pool *pgxpool.Pool }

func NewFileMetadataRepoPG(pool *pgxpool.Pool) FileMetadataRepository {
	return &fileMetadataRepoPG{pool: pool}
}

func (r *fileMetadataRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const fileCols = `id, owner_id, file_name, stored_name, content_type, size_bytes, category, uploaded_at`

func scanFile(row pgx.Row) (*FileMetadata, error) {
	var f FileMetadata
	err := row.Scan(&f.ID, &f.OwnerID, &f.FileName, &f.StoredName, &f.ContentType,
		&f.SizeBytes, &f.Category, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *fileMetadataRepoPG) Create(ctx context.Context, f *FileMetadata) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO file_metadata (id, owner_id, file_name, stored_name, content_type, size_bytes, category)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.OwnerID, f.FileName, f.StoredName, f.ContentType, f.SizeBytes, f.Category)
	return err
}

func (r *fileMetadataRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FileMetadata, error) {
	return scanFile(r.conn(ctx).QueryRow(ctx, `SELECT `+fileCols+` FROM file_metadata WHERE id = $1`, id))
}

func (r *fileMetadataRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM file_metadata WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileMetadataRepoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*FileMetadata, int, error) {
	conn := r.conn(ctx)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM file_metadata WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx, `SELECT `+fileCols+` FROM file_metadata
		WHERE owner_id = $1 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*FileMetadata
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}
