package support

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
	requests HelpRequestRepository
	feedback FeedbackRepository
	alerts   HealthAlertRepository
	recorder ActivityRecorder
	notices  NoticeWriter
}

func NewService(requests HelpRequestRepository, feedback FeedbackRepository,
	alerts HealthAlertRepository, recorder ActivityRecorder, notices NoticeWriter) *Service {
	return &Service{
		requests: requests,
		feedback: feedback,
		alerts:   alerts,
		recorder: recorder,
		notices:  notices,
	}
}

type HelpRequestInput struct {
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Urgency     *string `json:"urgency"`
}

// CreateHelpRequest files a new request. Requests always start OPEN.
func (s *Service) CreateHelpRequest(ctx context.Context, studentID uuid.UUID, in HelpRequestInput) (*HelpRequest, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	hr := &HelpRequest{
		StudentID:   studentID,
		Subject:     in.Subject,
		Description: in.Description,
		Urgency:     in.Urgency,
		Status:      StatusOpen,
	}
	if err := s.requests.Create(ctx, hr); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, studentID, "help_request.create", "filed help request "+hr.ID.String())
	}
	return hr, nil
}

func (s *Service) GetHelpRequestForStudent(ctx context.Context, studentID, id uuid.UUID) (*HelpRequest, error) {
	hr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hr.StudentID != studentID {
		return nil, ErrNotFound
	}
	return hr, nil
}

func (s *Service) ListHelpRequestsForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*HelpRequest, int, error) {
	return s.requests.Search(ctx, map[string]string{"student": studentID.String()}, limit, offset)
}

// ListHelpRequests is the staff view across all students, optionally
// filtered by status and urgency.
func (s *Service) ListHelpRequests(ctx context.Context, filters map[string]string, limit, offset int) ([]*HelpRequest, int, error) {
	params := map[string]string{}
	for _, k := range []string{"status", "urgency"} {
		if v, ok := filters[k]; ok && v != "" {
			params[k] = v
		}
	}
	return s.requests.Search(ctx, params, limit, offset)
}

// UpdateHelpRequestStatus moves a request through its lifecycle on behalf of
// staff. The student who filed it is notified of every change.
func (s *Service) UpdateHelpRequestStatus(ctx context.Context, staffID, id uuid.UUID, next RequestStatus) (*HelpRequest, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	hr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !hr.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrConflict, hr.Status, next)
	}
	hr.Status = next
	if err := s.requests.Update(ctx, hr); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, staffID, "help_request.status", fmt.Sprintf("moved request %s to %s", hr.ID, next))
	}
	if s.notices != nil {
		s.notices.Notify(ctx, hr.StudentID, "help_request",
			"Help request updated",
			fmt.Sprintf("Your request %q is now %s.", hr.Subject, next))
	}
	return hr, nil
}

type FeedbackInput struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// SubmitFeedback records a rated comment. Ratings run 1 to 5.
func (s *Service) SubmitFeedback(ctx context.Context, studentID uuid.UUID, in FeedbackInput) (*Feedback, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	f := &Feedback{StudentID: studentID, Content: in.Content, Rating: in.Rating}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListFeedback(ctx context.Context, limit, offset int) ([]*Feedback, int, error) {
	return s.feedback.List(ctx, limit, offset)
}

func (s *Service) ListFeedbackForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Feedback, int, error) {
	return s.feedback.ListByStudent(ctx, studentID, limit, offset)
}

type HealthAlertInput struct {
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	Severity string     `json:"severity"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// CreateAlert publishes a broadcast. The display window starts now unless
// given, and an alert with an end before its start is rejected.
func (s *Service) CreateAlert(ctx context.Context, createdBy uuid.UUID, in HealthAlertInput) (*HealthAlert, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if in.Severity == "" {
		in.Severity = "INFO"
	}

	a := &HealthAlert{
		CreatedBy: createdBy,
		Title:     in.Title,
		Message:   in.Message,
		Severity:  strings.ToUpper(in.Severity),
		StartsAt:  time.Now(),
		EndsAt:    in.EndsAt,
		IsActive:  true,
	}
	if in.StartsAt != nil {
		a.StartsAt = *in.StartsAt
	}
	if a.EndsAt != nil && a.EndsAt.Before(a.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at precedes starts_at", ErrValidation)
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, createdBy, "alert.create", "published alert "+a.ID.String())
	}
	return a, nil
}

// DeactivateAlert takes an alert out of circulation.
func (s *Service) DeactivateAlert(ctx context.Context, id uuid.UUID) (*HealthAlert, error) {
	a, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return a, nil
	}
	a.IsActive = false
	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListActiveAlerts is what students see.
func (s *Service) ListActiveAlerts(ctx context.Context) ([]*HealthAlert, error) {
	return s.alerts.ListActive(ctx, time.Now())
}

func (s *Service) ListAlerts(ctx context.Context, limit, offset int) ([]*HealthAlert, int, error) {
	return s.alerts.List(ctx, limit, offset)
}
