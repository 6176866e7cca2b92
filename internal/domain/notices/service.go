package notices

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Mailer delivers a rendered template to an address. Implemented by
// notify.Dispatcher.
type Mailer interface {
	Send(ctx context.Context, templateID, recipient string, data map[string]string) error
}

// EmailDirectory resolves a user id to their email address. Implemented by
// the account service.
type EmailDirectory interface {
	EmailForUser(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	notifications NotificationRepository
	mail          Mailer
	emails        EmailDirectory
}

func NewService(notifications NotificationRepository) *Service {
	return &Service{notifications: notifications}
}

// WithMailer turns on outbound email mirroring of notices. Both the mailer
// and the directory must be set for mail to be sent.
func (s *Service) WithMailer(mail Mailer, emails EmailDirectory) *Service {
	s.mail = mail
	s.emails = emails
	return s
}

// Notify writes an in-app notification on behalf of another service. It is
// best-effort: failures are logged and swallowed so they never fail the
// operation that triggered them.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind, title, message string) {
	n := &Notification{UserID: userID, Type: kind, Title: title, Message: message}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("type", kind).
			Msg("failed to write notification")
	}
	s.sendMail(ctx, userID, title, message)
}

// sendMail mirrors a notice to the user's email when a mailer is configured.
// Like the in-app write, failures are logged and swallowed.
func (s *Service) sendMail(ctx context.Context, userID uuid.UUID, title, message string) {
	if s.mail == nil || s.emails == nil {
		return
	}
	addr, err := s.emails.EmailForUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to resolve notice recipient")
		return
	}
	data := map[string]string{"title": title, "message": message}
	if err := s.mail.Send(ctx, "notice", addr, data); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to mail notice")
	}
}

type CreateInput struct {
	UserID  uuid.UUID `json:"user_id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}

// Create writes a notification and reports failure, unlike Notify. Used by
// the admin broadcast endpoint.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Notification, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Type == "" {
		in.Type = "general"
	}
	n := &Notification{UserID: in.UserID, Type: in.Type, Title: in.Title, Message: in.Message}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	s.sendMail(ctx, n.UserID, n.Title, n.Message)
	return n, nil
}

// List returns the user's notifications newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifications.CountUnread(ctx, userID)
}

// MarkRead marks a notification as read. Marking an already-read one is a
// no-op. Another user's notification reads as missing.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotFound
	}
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return s.notifications.GetByID(ctx, id)
}

// MarkAllRead marks every unread notification for the user and returns how
// many were affected.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotFound
	}
	return s.notifications.Delete(ctx, id)
}
