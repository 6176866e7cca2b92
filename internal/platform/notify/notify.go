// Package notify delivers outbound email/SMS messages rendered from
// templates. Domain services call it best-effort after their primary write;
// delivery failures are logged by the caller and never fail the operation.
// Persisted in-app notifications live in internal/domain/notices.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Channel is the delivery channel for an outbound message.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// ---------------------------------------------------------------------------
// Template Engine
// ---------------------------------------------------------------------------

// Template defines a reusable message template.
type Template struct {
	ID      string
	Subject string
	Body    string
	Channel Channel
}

// TemplateEngine manages message templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "appointment-booked",
			Subject: "New Appointment Request",
			Body:    "Dear {{provider_name}}, {{student_name}} has requested an appointment on {{date}}. Reason: {{reason}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "appointment-cancelled",
			Subject: "Appointment Cancelled",
			Body:    "Dear {{recipient_name}}, the appointment on {{date}} has been cancelled. Reason: {{reason}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "appointment-confirmed",
			Subject: "Appointment Confirmed",
			Body:    "Dear {{student_name}}, your appointment on {{date}} with {{provider_name}} has been confirmed.",
			Channel: ChannelEmail,
		},
		{
			ID:      "prescription-issued",
			Subject: "New Prescription",
			Body:    "Dear {{student_name}}, {{provider_name}} has issued you a prescription for {{medication}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "health-alert",
			Subject: "Health Alert: {{title}}",
			Body:    "{{message}}",
			Channel: ChannelEmail,
		},
		{
			ID:      "notice",
			Subject: "{{title}}",
			Body:    "{{message}}",
			Channel: ChannelEmail,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	t, ok := e.lookup(templateID)
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

func (e *TemplateEngine) lookup(templateID string) (*Template, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.templates[templateID]
	return t, ok
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher renders a template and delivers it through the template's
// channel.
type Dispatcher struct {
	email     EmailSender
	sms       SMSSender
	templates *TemplateEngine
}

func NewDispatcher(email EmailSender, sms SMSSender, tpl *TemplateEngine) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, templates: tpl}
}

// Send renders templateID with data and delivers the result to recipient.
func (d *Dispatcher) Send(ctx context.Context, templateID, recipient string, data map[string]string) error {
	t, ok := d.templates.lookup(templateID)
	if !ok {
		return fmt.Errorf("template %q not found", templateID)
	}
	subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		return err
	}

	switch t.Channel {
	case ChannelEmail:
		if err := d.email.SendEmail(ctx, recipient, subject, body); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
	case ChannelSMS:
		if err := d.sms.SendSMS(ctx, recipient, body); err != nil {
			return fmt.Errorf("send sms: %w", err)
		}
	default:
		return fmt.Errorf("unsupported channel: %s", t.Channel)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock Senders (test doubles and development default)
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

// SendSMS records the call and optionally returns an error.
func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}
