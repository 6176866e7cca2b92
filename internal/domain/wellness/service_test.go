package wellness

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockJournalRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Journal
}

func (m *mockJournalRepo) Create(_ context.Context, j *Journal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = uuid.New()
	j.CreatedAt = time.Now()
	j.UpdatedAt = j.CreatedAt
	cp := *j
	m.items[j.ID] = &cp
	return nil
}

func (m *mockJournalRepo) GetByID(_ context.Context, id uuid.UUID) (*Journal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockJournalRepo) Update(_ context.Context, j *Journal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[j.ID]; !ok {
		return ErrNotFound
	}
	cp := *j
	m.items[j.ID] = &cp
	return nil
}

func (m *mockJournalRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockJournalRepo) ListByStudent(_ context.Context, studentID uuid.UUID, limit, offset int) ([]*Journal, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*Journal
	for _, j := range m.items {
		if j.StudentID != studentID {
			continue
		}
		cp := *j
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type mockMoodLogRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*MoodLog
}

func (m *mockMoodLogRepo) Create(_ context.Context, ml *MoodLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ml.ID = uuid.New()
	cp := *ml
	m.items[ml.ID] = &cp
	return nil
}

func (m *mockMoodLogRepo) GetByID(_ context.Context, id uuid.UUID) (*MoodLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ml, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ml
	return &cp, nil
}

func (m *mockMoodLogRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockMoodLogRepo) ListByStudent(_ context.Context, studentID uuid.UUID, from, to time.Time, limit, offset int) ([]*MoodLog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*MoodLog
	for _, ml := range m.items {
		if ml.StudentID != studentID {
			continue
		}
		if !from.IsZero() && ml.LoggedAt.Before(from) {
			continue
		}
		if !to.IsZero() && ml.LoggedAt.After(to) {
			continue
		}
		cp := *ml
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].LoggedAt.After(matched[j].LoggedAt) })
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type mockContactRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*EmergencyContact
}

func (m *mockContactRepo) Create(_ context.Context, ec *EmergencyContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ec.ID = uuid.New()
	ec.CreatedAt = time.Now()
	cp := *ec
	m.items[ec.ID] = &cp
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id uuid.UUID) (*EmergencyContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ec, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ec
	return &cp, nil
}

func (m *mockContactRepo) Update(_ context.Context, ec *EmergencyContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[ec.ID]; !ok {
		return ErrNotFound
	}
	cp := *ec
	m.items[ec.ID] = &cp
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockContactRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*EmergencyContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*EmergencyContact
	for _, ec := range m.items {
		if ec.StudentID != studentID {
			continue
		}
		cp := *ec
		matched = append(matched, &cp)
	}
	return matched, nil
}

func newTestService() *Service {
	return NewService(
		&mockJournalRepo{items: make(map[uuid.UUID]*Journal)},
		&mockMoodLogRepo{items: make(map[uuid.UUID]*MoodLog)},
		&mockContactRepo{items: make(map[uuid.UUID]*EmergencyContact)},
	)
}

func TestJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	student := uuid.New()

	created, err := svc.CreateJournal(ctx, student, JournalInput{Title: "Week one", Content: "Settling in."})
	if err != nil {
		t.Fatalf("CreateJournal: %v", err)
	}

	got, err := svc.GetJournal(ctx, student, created.ID)
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if got.Title != created.Title || got.Content != created.Content {
		t.Error("journal should read back what was written")
	}

	updated, err := svc.UpdateJournal(ctx, student, created.ID, JournalInput{Title: "Week one", Content: "Revised."})
	if err != nil {
		t.Fatalf("UpdateJournal: %v", err)
	}
	if updated.Content != "Revised." {
		t.Error("content should be updated")
	}

	if err := svc.DeleteJournal(ctx, student, created.ID); err != nil {
		t.Fatalf("DeleteJournal: %v", err)
	}
	if _, err := svc.GetJournal(ctx, student, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestJournalOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	owner := uuid.New()

	j, err := svc.CreateJournal(ctx, owner, JournalInput{Title: "Private", Content: "..."})
	if err != nil {
		t.Fatalf("CreateJournal: %v", err)
	}
	stranger := uuid.New()
	if _, err := svc.GetJournal(ctx, stranger, j.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign get err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteJournal(ctx, stranger, j.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete err = %v, want ErrNotFound", err)
	}
}

func TestJournalValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.CreateJournal(ctx, uuid.New(), JournalInput{Title: " ", Content: "x"}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank title err = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateJournal(ctx, uuid.New(), JournalInput{Title: "x", Content: ""}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty content err = %v, want ErrValidation", err)
	}
}

func TestLogMoodRatingBounds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	student := uuid.New()

	for _, rating := range []int{0, 11, -3} {
		if _, err := svc.LogMood(ctx, student, MoodLogInput{Mood: "fine", Rating: rating}); !errors.Is(err, ErrValidation) {
			t.Errorf("rating %d err = %v, want ErrValidation", rating, err)
		}
	}
	for _, rating := range []int{1, 5, 10} {
		if _, err := svc.LogMood(ctx, student, MoodLogInput{Mood: "fine", Rating: rating}); err != nil {
			t.Errorf("rating %d: %v", rating, err)
		}
	}
}

func TestListMoodLogsWindow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	student := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for day := 0; day < 5; day++ {
		at := base.AddDate(0, 0, day)
		if _, err := svc.LogMood(ctx, student, MoodLogInput{Mood: "ok", Rating: 5, LoggedAt: &at}); err != nil {
			t.Fatalf("LogMood: %v", err)
		}
	}

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	items, total, err := svc.ListMoodLogs(ctx, student, from, to, 20, 0)
	if err != nil {
		t.Fatalf("ListMoodLogs: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("total = %d, len = %d, want 3/3", total, len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].LoggedAt.After(items[i-1].LoggedAt) {
			t.Error("mood logs should be newest first")
		}
	}

	if _, _, err := svc.ListMoodLogs(ctx, student, to, from, 20, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("inverted window err = %v, want ErrValidation", err)
	}
}

func TestEmergencyContactLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	student := uuid.New()

	ec, err := svc.CreateContact(ctx, student, EmergencyContactInput{
		Name:         "Jordan Smith",
		Relationship: "parent",
		Phone:        "+1-555-0100",
	})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}

	email := "jordan@example.com"
	updated, err := svc.UpdateContact(ctx, student, ec.ID, EmergencyContactInput{
		Name:         "Jordan Smith",
		Relationship: "parent",
		Phone:        "+1-555-0199",
		Email:        &email,
	})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if updated.Phone != "+1-555-0199" || updated.Email == nil {
		t.Error("update should apply phone and email")
	}

	if _, err := svc.UpdateContact(ctx, uuid.New(), ec.ID, EmergencyContactInput{Name: "x", Relationship: "y", Phone: "z"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign update err = %v, want ErrNotFound", err)
	}

	contacts, err := svc.ListContacts(ctx, student)
	if err != nil || len(contacts) != 1 {
		t.Fatalf("ListContacts: err=%v len=%d", err, len(contacts))
	}

	if err := svc.DeleteContact(ctx, student, ec.ID); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
}
