package files

import (
	"context"

	"github.com/google/uuid"
)

type FileMetadataRepository interface {
	Create(ctx context.Context, f *FileMetadata) error
	GetByID(ctx context.Context, id uuid.UUID) (*FileMetadata, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*FileMetadata, int, error)
}
