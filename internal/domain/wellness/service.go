package wellness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	journals JournalRepository
	moods    MoodLogRepository
	contacts EmergencyContactRepository
}

func NewService(journals JournalRepository, moods MoodLogRepository, contacts EmergencyContactRepository) *Service {
	return &Service{journals: journals, moods: moods, contacts: contacts}
}

type JournalInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (in *JournalInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

func (s *Service) CreateJournal(ctx context.Context, studentID uuid.UUID, in JournalInput) (*Journal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	j := &Journal{StudentID: studentID, Title: in.Title, Content: in.Content}
	if err := s.journals.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Service) GetJournal(ctx context.Context, studentID, id uuid.UUID) (*Journal, error) {
	j, err := s.journals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.StudentID != studentID {
		return nil, ErrNotFound
	}
	return j, nil
}

func (s *Service) UpdateJournal(ctx context.Context, studentID, id uuid.UUID, in JournalInput) (*Journal, error) {
	j, err := s.GetJournal(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	j.Title = in.Title
	j.Content = in.Content
	if err := s.journals.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Service) DeleteJournal(ctx context.Context, studentID, id uuid.UUID) error {
	if _, err := s.GetJournal(ctx, studentID, id); err != nil {
		return err
	}
	return s.journals.Delete(ctx, id)
}

func (s *Service) ListJournals(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Journal, int, error) {
	return s.journals.ListByStudent(ctx, studentID, limit, offset)
}

type MoodLogInput struct {
	Mood     string     `json:"mood"`
	Rating   int        `json:"rating"`
	Notes    *string    `json:"notes"`
	LoggedAt *time.Time `json:"logged_at"`
}

// LogMood records a mood entry. Ratings run from 1 (worst) to 10 (best);
// the logged-at time defaults to now.
func (s *Service) LogMood(ctx context.Context, studentID uuid.UUID, in MoodLogInput) (*MoodLog, error) {
	in.Mood = strings.TrimSpace(in.Mood)
	if in.Mood == "" {
		return nil, fmt.Errorf("%w: mood is required", ErrValidation)
	}
	if in.Rating < 1 || in.Rating > 10 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 10", ErrValidation)
	}
	m := &MoodLog{
		StudentID: studentID,
		Mood:      in.Mood,
		Rating:    in.Rating,
		Notes:     in.Notes,
		LoggedAt:  time.Now(),
	}
	if in.LoggedAt != nil {
		m.LoggedAt = *in.LoggedAt
	}
	if err := s.moods.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMoodLog(ctx context.Context, studentID, id uuid.UUID) error {
	m, err := s.moods.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.StudentID != studentID {
		return ErrNotFound
	}
	return s.moods.Delete(ctx, id)
}

// ListMoodLogs returns the student's mood entries newest first, optionally
// bounded to [from, to].
func (s *Service) ListMoodLogs(ctx context.Context, studentID uuid.UUID, from, to time.Time, limit, offset int) ([]*MoodLog, int, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, 0, fmt.Errorf("%w: to precedes from", ErrValidation)
	}
	return s.moods.ListByStudent(ctx, studentID, from, to, limit, offset)
}

type EmergencyContactInput struct {
	Name         string  `json:"name"`
	Relationship string  `json:"relationship"`
	Phone        string  `json:"phone"`
	Email        *string `json:"email"`
}

func (in *EmergencyContactInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Relationship = strings.TrimSpace(in.Relationship)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Relationship == "" || in.Phone == "" {
		return fmt.Errorf("%w: name, relationship and phone are required", ErrValidation)
	}
	return nil
}

func (s *Service) CreateContact(ctx context.Context, studentID uuid.UUID, in EmergencyContactInput) (*EmergencyContact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ec := &EmergencyContact{
		StudentID:    studentID,
		Name:         in.Name,
		Relationship: in.Relationship,
		Phone:        in.Phone,
		Email:        in.Email,
	}
	if err := s.contacts.Create(ctx, ec); err != nil {
		return nil, err
	}
	return ec, nil
}

func (s *Service) UpdateContact(ctx context.Context, studentID, id uuid.UUID, in EmergencyContactInput) (*EmergencyContact, error) {
	ec, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ec.StudentID != studentID {
		return nil, ErrNotFound
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ec.Name = in.Name
	ec.Relationship = in.Relationship
	ec.Phone = in.Phone
	ec.Email = in.Email
	if err := s.contacts.Update(ctx, ec); err != nil {
		return nil, err
	}
	return ec, nil
}

func (s *Service) DeleteContact(ctx context.Context, studentID, id uuid.UUID) error {
	ec, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ec.StudentID != studentID {
		return ErrNotFound
	}
	return s.contacts.Delete(ctx, id)
}

func (s *Service) ListContacts(ctx context.Context, studentID uuid.UUID) ([]*EmergencyContact, error) {
	return s.contacts.ListByStudent(ctx, studentID)
}
