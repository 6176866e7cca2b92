package files

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/campushealth/campushealth/internal/platform/blobstore"
)

type Service struct {
	meta     FileMetadataRepository
	store    blobstore.Store
	maxBytes int64
}

func NewService(meta FileMetadataRepository, store blobstore.Store, maxBytes int64) *Service {
	return &Service{meta: meta, store: store, maxBytes: maxBytes}
}

type UploadInput struct {
	FileName    string
	ContentType string
	Category    *string
	Size        int64
	Body        io.Reader
}

// Upload stores the bytes under a generated <uuid><ext> name and records the
// metadata row. The id doubles as the stored name stem so the blob can
// always be found from the row. The declared size is checked up front and
// the byte stream is capped as well, so a lying Content-Length cannot sneak
// past the limit.
func (s *Service) Upload(ctx context.Context, ownerID uuid.UUID, in UploadInput) (*FileMetadata, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	if in.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if in.Size > s.maxBytes {
		return nil, ErrTooLarge
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	id := uuid.New()
	storedName := id.String() + strings.ToLower(filepath.Ext(in.FileName))

	limited := io.LimitReader(in.Body, s.maxBytes+1)
	written, err := s.store.Save(ctx, storedName, limited)
	if err != nil {
		return nil, err
	}
	if written > s.maxBytes {
		if derr := s.store.Delete(ctx, storedName); derr != nil {
			log.Warn().Err(derr).Str("stored_name", storedName).Msg("failed to remove oversized upload")
		}
		return nil, ErrTooLarge
	}

	f := &FileMetadata{
		ID:          id,
		OwnerID:     ownerID,
		FileName:    in.FileName,
		StoredName:  storedName,
		ContentType: in.ContentType,
		SizeBytes:   written,
		Category:    in.Category,
	}
	if err := s.meta.Create(ctx, f); err != nil {
		if derr := s.store.Delete(ctx, storedName); derr != nil {
			log.Warn().Err(derr).Str("stored_name", storedName).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}
	return f, nil
}

// Open returns the metadata and a reader over the stored bytes. The caller
// closes the reader.
func (s *Service) Open(ctx context.Context, ownerID, id uuid.UUID) (*FileMetadata, io.ReadCloser, error) {
	f, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, f.StoredName)
	if err != nil {
		if err == blobstore.ErrNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return f, rc, nil
}

// Delete removes the metadata row first, then the bytes. A failure deleting
// the bytes is logged but does not resurrect the row.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	f, err := s.get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.meta.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.StoredName); err != nil {
		log.Warn().Err(err).Str("stored_name", f.StoredName).Msg("failed to remove file bytes")
	}
	return nil
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*FileMetadata, int, error) {
	return s.meta.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) get(ctx context.Context, ownerID, id uuid.UUID) (*FileMetadata, error) {
	f, err := s.meta.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return f, nil
}
