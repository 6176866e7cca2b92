package files

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("file not found")
	ErrValidation = errors.New("invalid file")
	ErrTooLarge   = errors.New("file exceeds the upload size limit")
)

// FileMetadata describes an uploaded file. Bytes live in the blob store
// under StoredName; FileName keeps the name the uploader gave it.
type FileMetadata struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	FileName    string    `json:"file_name"`
	StoredName  string    `json:"stored_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Category    *string   `json:"category,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
