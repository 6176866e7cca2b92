package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, action, detail string)
}

type NoticeWriter interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string)
}

type Service struct {
	records       HealthRecordRepository
	prescriptions PrescriptionRepository
	recorder      ActivityRecorder
	notices       NoticeWriter
}

func NewService(records HealthRecordRepository, prescriptions PrescriptionRepository,
	recorder ActivityRecorder, notices NoticeWriter) *Service {
	return &Service{
		records:       records,
		prescriptions: prescriptions,
		recorder:      recorder,
		notices:       notices,
	}
}

type CreateRecordInput struct {
	StudentID       uuid.UUID        `json:"student_id"`
	Diagnosis       string           `json:"diagnosis"`
	Treatment       *string          `json:"treatment"`
	Notes           *string          `json:"notes"`
	Confidentiality *Confidentiality `json:"confidentiality"`
	RecordDate      *time.Time       `json:"record_date"`
}

// CreateRecord files a health record on behalf of a provider. The
// confidentiality level defaults to MEDIUM and the record date to now.
func (s *Service) CreateRecord(ctx context.Context, providerID uuid.UUID, in CreateRecordInput) (*HealthRecord, error) {
	if in.StudentID == uuid.Nil {
		return nil, fmt.Errorf("%w: student_id is required", ErrValidation)
	}
	in.Diagnosis = strings.TrimSpace(in.Diagnosis)
	if in.Diagnosis == "" {
		return nil, fmt.Errorf("%w: diagnosis is required", ErrValidation)
	}

	rec := &HealthRecord{
		StudentID:       in.StudentID,
		ProviderID:      providerID,
		Diagnosis:       in.Diagnosis,
		Treatment:       in.Treatment,
		Notes:           in.Notes,
		Confidentiality: ConfidentialityMedium,
		RecordDate:      time.Now(),
	}
	if in.Confidentiality != nil {
		if !in.Confidentiality.Valid() {
			return nil, fmt.Errorf("%w: unknown confidentiality level %q", ErrValidation, *in.Confidentiality)
		}
		rec.Confidentiality = *in.Confidentiality
	}
	if in.RecordDate != nil {
		rec.RecordDate = *in.RecordDate
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, providerID, "record.create", "created health record "+rec.ID.String())
	}
	return rec, nil
}

type UpdateRecordInput struct {
	Diagnosis       *string          `json:"diagnosis"`
	Treatment       *string          `json:"treatment"`
	Notes           *string          `json:"notes"`
	Confidentiality *Confidentiality `json:"confidentiality"`
	RecordDate      *time.Time       `json:"record_date"`
}

// UpdateRecord applies a partial update to a record owned by the provider.
// Nil fields keep their stored values.
func (s *Service) UpdateRecord(ctx context.Context, providerID, id uuid.UUID, in UpdateRecordInput) (*HealthRecord, error) {
	rec, err := s.getProviderRecord(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	if in.Diagnosis != nil {
		d := strings.TrimSpace(*in.Diagnosis)
		if d == "" {
			return nil, fmt.Errorf("%w: diagnosis cannot be empty", ErrValidation)
		}
		rec.Diagnosis = d
	}
	if in.Treatment != nil {
		rec.Treatment = in.Treatment
	}
	if in.Notes != nil {
		rec.Notes = in.Notes
	}
	if in.Confidentiality != nil {
		if !in.Confidentiality.Valid() {
			return nil, fmt.Errorf("%w: unknown confidentiality level %q", ErrValidation, *in.Confidentiality)
		}
		rec.Confidentiality = *in.Confidentiality
	}
	if in.RecordDate != nil {
		rec.RecordDate = *in.RecordDate
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// VerifyRecord marks a provider-owned record as verified. Verifying an
// already verified record is a no-op.
func (s *Service) VerifyRecord(ctx context.Context, providerID, id uuid.UUID) (*HealthRecord, error) {
	rec, err := s.getProviderRecord(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	if rec.IsVerified {
		return rec, nil
	}
	rec.IsVerified = true
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, providerID, "record.verify", "verified health record "+rec.ID.String())
	}
	return rec, nil
}

func (s *Service) getProviderRecord(ctx context.Context, providerID, id uuid.UUID) (*HealthRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.ProviderID != providerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// GetRecordForStudent loads a record scoped to the student it belongs to.
func (s *Service) GetRecordForStudent(ctx context.Context, studentID, id uuid.UUID) (*HealthRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.StudentID != studentID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListRecordsForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	return s.records.Search(ctx, map[string]string{"student": studentID.String()}, limit, offset)
}

// ListRecordsForProvider lists records the provider filed, optionally
// filtered by verification state and diagnosis substring.
func (s *Service) ListRecordsForProvider(ctx context.Context, providerID uuid.UUID, filters map[string]string, limit, offset int) ([]*HealthRecord, int, error) {
	params := map[string]string{"provider": providerID.String()}
	for _, k := range []string{"verified", "diagnosis"} {
		if v, ok := filters[k]; ok && v != "" {
			params[k] = v
		}
	}
	return s.records.Search(ctx, params, limit, offset)
}

type CreatePrescriptionInput struct {
	StudentID    uuid.UUID  `json:"student_id"`
	Medication   string     `json:"medication"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Instructions *string    `json:"instructions"`
}

// CreatePrescription issues a prescription. Medication, dosage and frequency
// are required; the start date defaults to now.
func (s *Service) CreatePrescription(ctx context.Context, providerID uuid.UUID, in CreatePrescriptionInput) (*Prescription, error) {
	if in.StudentID == uuid.Nil {
		return nil, fmt.Errorf("%w: student_id is required", ErrValidation)
	}
	in.Medication = strings.TrimSpace(in.Medication)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Frequency = strings.TrimSpace(in.Frequency)
	if in.Medication == "" || in.Dosage == "" || in.Frequency == "" {
		return nil, fmt.Errorf("%w: medication, dosage and frequency are required", ErrValidation)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, fmt.Errorf("%w: end_date precedes start_date", ErrValidation)
	}

	p := &Prescription{
		StudentID:    in.StudentID,
		ProviderID:   providerID,
		Medication:   in.Medication,
		Dosage:       in.Dosage,
		Frequency:    in.Frequency,
		StartDate:    time.Now(),
		EndDate:      in.EndDate,
		Instructions: in.Instructions,
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, providerID, "prescription.create", "issued prescription "+p.ID.String())
	}
	if s.notices != nil {
		s.notices.Notify(ctx, p.StudentID, "prescription",
			"New prescription",
			fmt.Sprintf("You have been prescribed %s (%s, %s).", p.Medication, p.Dosage, p.Frequency))
	}
	return p, nil
}

type UpdatePrescriptionInput struct {
	Medication   *string    `json:"medication"`
	Dosage       *string    `json:"dosage"`
	Frequency    *string    `json:"frequency"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Instructions *string    `json:"instructions"`
}

func (s *Service) UpdatePrescription(ctx context.Context, providerID, id uuid.UUID, in UpdatePrescriptionInput) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ProviderID != providerID {
		return nil, ErrNotFound
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{{in.Medication, &p.Medication}, {in.Dosage, &p.Dosage}, {in.Frequency, &p.Frequency}} {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return nil, fmt.Errorf("%w: field cannot be empty", ErrValidation)
		}
		*f.dst = v
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	if in.Instructions != nil {
		p.Instructions = in.Instructions
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return nil, fmt.Errorf("%w: end_date precedes start_date", ErrValidation)
	}
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPrescriptionForStudent(ctx context.Context, studentID, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.StudentID != studentID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListPrescriptionsForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.Search(ctx, map[string]string{"student": studentID.String()}, limit, offset)
}

func (s *Service) ListPrescriptionsForProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.Search(ctx, map[string]string{"provider": providerID.String()}, limit, offset)
}
