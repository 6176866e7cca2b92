package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("invalid record")
)

// Confidentiality classifies how sensitive a health record is. The level is
// stored with the record and surfaced to clients; access control on top of
// it is the portal's concern.
type Confidentiality string

const (
	ConfidentialityLow          Confidentiality = "LOW"
	ConfidentialityMedium       Confidentiality = "MEDIUM"
	ConfidentialityHigh         Confidentiality = "HIGH"
	ConfidentialityConfidential Confidentiality = "CONFIDENTIAL"
)

func (c Confidentiality) Valid() bool {
	switch c {
	case ConfidentialityLow, ConfidentialityMedium, ConfidentialityHigh, ConfidentialityConfidential:
		return true
	}
	return false
}

type HealthRecord struct {
	ID              uuid.UUID       `json:"id"`
	StudentID       uuid.UUID       `json:"student_id"`
	ProviderID      uuid.UUID       `json:"provider_id"`
	Diagnosis       string          `json:"diagnosis"`
	Treatment       *string         `json:"treatment,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	Confidentiality Confidentiality `json:"confidentiality"`
	IsVerified      bool            `json:"is_verified"`
	RecordDate      time.Time       `json:"record_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Prescription struct {
	ID           uuid.UUID  `json:"id"`
	StudentID    uuid.UUID  `json:"student_id"`
	ProviderID   uuid.UUID  `json:"provider_id"`
	Medication   string     `json:"medication"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Instructions *string    `json:"instructions,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
