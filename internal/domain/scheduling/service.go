package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderDirectory answers whether an id names an active provider.
// Implemented by the account service.
type ProviderDirectory interface {
	ProviderExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ActivityRecorder receives best-effort activity log entries. A nil recorder
// disables recording.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, action, detail string)
}

// NoticeWriter delivers best-effort in-app notices. A nil writer disables
// them.
type NoticeWriter interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string)
}

type Service struct {
	appointments AppointmentRepository
	providers    ProviderDirectory
	recorder     ActivityRecorder
	notices      NoticeWriter
}

func NewService(appointments AppointmentRepository, providers ProviderDirectory,
	recorder ActivityRecorder, notices NoticeWriter) *Service {
	return &Service{
		appointments: appointments,
		providers:    providers,
		recorder:     recorder,
		notices:      notices,
	}
}

type CreateInput struct {
	ProviderID uuid.UUID `json:"provider_id"`
	StartTime  time.Time `json:"start_time"`
	Reason     *string   `json:"reason"`
	Priority   *string   `json:"priority"`
	Notes      *string   `json:"notes"`
}

// Create books a new appointment for the student. The provider must exist
// and the start time must be set; the status always begins as PENDING.
func (s *Service) Create(ctx context.Context, studentID uuid.UUID, in CreateInput) (*Appointment, error) {
	if in.ProviderID == uuid.Nil {
		return nil, fmt.Errorf("%w: provider_id is required", ErrValidation)
	}
	if in.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrValidation)
	}
	exists, err := s.providers.ProviderExists(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: provider does not exist", ErrNotFound)
	}

	a := &Appointment{
		StudentID:  studentID,
		ProviderID: in.ProviderID,
		StartTime:  in.StartTime,
		Reason:     in.Reason,
		Priority:   in.Priority,
		Notes:      in.Notes,
		Status:     StatusPending,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, studentID, "appointment.create", "booked appointment "+a.ID.String())
	}
	if s.notices != nil {
		s.notices.Notify(ctx, a.ProviderID, "appointment",
			"New appointment request",
			fmt.Sprintf("A student requested an appointment on %s.", a.StartTime.Format(time.RFC3339)))
	}
	return a, nil
}

// GetForStudent loads an appointment scoped to its owning student. An
// appointment owned by someone else is indistinguishable from a missing one.
func (s *Service) GetForStudent(ctx context.Context, studentID, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.StudentID != studentID {
		return nil, ErrNotFound
	}
	return a, nil
}

// GetForProvider loads an appointment scoped to its provider.
func (s *Service) GetForProvider(ctx context.Context, providerID, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ProviderID != providerID {
		return nil, ErrNotFound
	}
	return a, nil
}

// Cancel moves a student-owned appointment to CANCELLED. Cancelling an
// already-terminal appointment is ErrConflict, including a second cancel of
// the same appointment.
func (s *Service) Cancel(ctx context.Context, studentID, id uuid.UUID, reason *string) (*Appointment, error) {
	a, err := s.GetForStudent(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, a, StatusCancelled); err != nil {
		return nil, err
	}
	a.CancellationReason = reason

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, studentID, "appointment.cancel", "cancelled appointment "+a.ID.String())
	}
	if s.notices != nil {
		s.notices.Notify(ctx, a.ProviderID, "appointment",
			"Appointment cancelled",
			fmt.Sprintf("The appointment on %s was cancelled by the student.", a.StartTime.Format(time.RFC3339)))
	}
	return a, nil
}

// Confirm moves a provider-owned appointment from PENDING to CONFIRMED.
func (s *Service) Confirm(ctx context.Context, providerID, id uuid.UUID) (*Appointment, error) {
	return s.providerTransition(ctx, providerID, id, StatusConfirmed, "confirmed")
}

// Complete moves a provider-owned appointment from CONFIRMED to COMPLETED.
func (s *Service) Complete(ctx context.Context, providerID, id uuid.UUID) (*Appointment, error) {
	return s.providerTransition(ctx, providerID, id, StatusCompleted, "completed")
}

// CancelByProvider lets the provider cancel a pending or confirmed
// appointment on their calendar.
func (s *Service) CancelByProvider(ctx context.Context, providerID, id uuid.UUID, reason *string) (*Appointment, error) {
	a, err := s.GetForProvider(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, a, StatusCancelled); err != nil {
		return nil, err
	}
	a.CancellationReason = reason
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, providerID, "appointment.cancel", "cancelled appointment "+a.ID.String())
	}
	if s.notices != nil {
		s.notices.Notify(ctx, a.StudentID, "appointment",
			"Appointment cancelled",
			fmt.Sprintf("Your appointment on %s was cancelled by the provider.", a.StartTime.Format(time.RFC3339)))
	}
	return a, nil
}

func (s *Service) providerTransition(ctx context.Context, providerID, id uuid.UUID, next Status, verb string) (*Appointment, error) {
	a, err := s.GetForProvider(ctx, providerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, a, next); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, providerID, "appointment."+verb, verb+" appointment "+a.ID.String())
	}
	if s.notices != nil {
		s.notices.Notify(ctx, a.StudentID, "appointment",
			"Appointment "+verb,
			fmt.Sprintf("Your appointment on %s was %s.", a.StartTime.Format(time.RFC3339), verb))
	}
	return a, nil
}

func (s *Service) transition(_ context.Context, a *Appointment, next Status) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrConflict, a.Status, next)
	}
	a.Status = next
	return nil
}

// ListForStudent returns the student's appointments ordered by start time
// ascending, optionally filtered by status and time window.
func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID, filters map[string]string, limit, offset int) ([]*Appointment, int, error) {
	params := map[string]string{"student": studentID.String()}
	for _, k := range []string{"status", "from", "to"} {
		if v, ok := filters[k]; ok && v != "" {
			params[k] = v
		}
	}
	return s.appointments.Search(ctx, params, limit, offset)
}

// ListForProvider returns the provider's appointments ordered by start time
// ascending, optionally filtered by status and time window.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID, filters map[string]string, limit, offset int) ([]*Appointment, int, error) {
	params := map[string]string{"provider": providerID.String()}
	for _, k := range []string{"status", "from", "to"} {
		if v, ok := filters[k]; ok && v != "" {
			params[k] = v
		}
	}
	return s.appointments.Search(ctx, params, limit, offset)
}
