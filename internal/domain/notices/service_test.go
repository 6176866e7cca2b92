package notices

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/campushealth/internal/platform/notify"
)

type mockNotificationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Notification
	fail  error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[uuid.UUID]*Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	m.items[n.ID] = &cp
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*Notification
	for _, n := range m.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
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

func (m *mockNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	now := time.Now()
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotifyWritesNotification(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	svc := NewService(repo)
	user := uuid.New()

	svc.Notify(ctx, user, "appointment", "Booked", "Your appointment is booked.")

	items, total, err := svc.List(ctx, user, false, 20, 0)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("List: err=%v total=%d len=%d", err, total, len(items))
	}
	if items[0].IsRead {
		t.Error("new notifications should start unread")
	}
}

func TestNotifySwallowsFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	repo.fail = errors.New("db down")
	svc := NewService(repo)

	// Must not panic or propagate.
	svc.Notify(ctx, uuid.New(), "appointment", "t", "m")
}

func TestMarkReadAndUnreadFilter(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	svc := NewService(repo)
	user := uuid.New()

	svc.Notify(ctx, user, "a", "first", "m")
	svc.Notify(ctx, user, "a", "second", "m")

	items, _, err := svc.List(ctx, user, false, 20, 0)
	if err != nil || len(items) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(items))
	}

	n, err := svc.MarkRead(ctx, user, items[0].ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !n.IsRead || n.ReadAt == nil {
		t.Error("MarkRead should set is_read and read_at")
	}

	unread, total, err := svc.List(ctx, user, true, 20, 0)
	if err != nil || total != 1 || len(unread) != 1 {
		t.Fatalf("unread list: err=%v total=%d len=%d", err, total, len(unread))
	}

	count, err := svc.CountUnread(ctx, user)
	if err != nil || count != 1 {
		t.Errorf("CountUnread = %d, want 1", count)
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	svc := NewService(repo)
	owner := uuid.New()

	svc.Notify(ctx, owner, "a", "t", "m")
	items, _, _ := svc.List(ctx, owner, false, 20, 0)

	if _, err := svc.MarkRead(ctx, uuid.New(), items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign mark-read err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, uuid.New(), items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete err = %v, want ErrNotFound", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	svc := NewService(repo)
	user := uuid.New()
	other := uuid.New()

	svc.Notify(ctx, user, "a", "one", "m")
	svc.Notify(ctx, user, "a", "two", "m")
	svc.Notify(ctx, other, "a", "theirs", "m")

	affected, err := svc.MarkAllRead(ctx, user)
	if err != nil || affected != 2 {
		t.Fatalf("MarkAllRead: err=%v affected=%d", err, affected)
	}

	count, _ := svc.CountUnread(ctx, user)
	if count != 0 {
		t.Errorf("unread after mark-all = %d, want 0", count)
	}
	otherCount, _ := svc.CountUnread(ctx, other)
	if otherCount != 1 {
		t.Error("mark-all must not touch other users")
	}

	// Second pass affects nothing.
	affected, err = svc.MarkAllRead(ctx, user)
	if err != nil || affected != 0 {
		t.Errorf("second MarkAllRead: err=%v affected=%d", err, affected)
	}
}

func TestNotifyMirrorsToMail(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	sender := &notify.MockEmailSender{}
	mailer := notify.NewDispatcher(sender, &notify.MockSMSSender{}, notify.NewTemplateEngine())
	svc := NewService(repo).WithMailer(mailer, staticDirectory{"student@campus.edu"})
	user := uuid.New()

	svc.Notify(ctx, user, "appointment", "Booked", "Your appointment is booked.")

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("email calls = %d, want 1", len(calls))
	}
	if calls[0].To != "student@campus.edu" {
		t.Errorf("to = %s", calls[0].To)
	}
	if calls[0].Subject != "Booked" || calls[0].Body != "Your appointment is booked." {
		t.Errorf("rendered mail = %q / %q", calls[0].Subject, calls[0].Body)
	}

	// The in-app notification is written regardless.
	if _, total, _ := svc.List(ctx, user, false, 20, 0); total != 1 {
		t.Errorf("in-app total = %d, want 1", total)
	}
}

func TestNotifySwallowsMailFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotificationRepo()
	sender := &notify.MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	mailer := notify.NewDispatcher(sender, &notify.MockSMSSender{}, notify.NewTemplateEngine())
	svc := NewService(repo).WithMailer(mailer, staticDirectory{"student@campus.edu"})
	user := uuid.New()

	svc.Notify(ctx, user, "appointment", "t", "m")

	if _, total, _ := svc.List(ctx, user, false, 20, 0); total != 1 {
		t.Error("mail failure must not lose the in-app notification")
	}
}

type staticDirectory struct{ email string }

func (d staticDirectory) EmailForUser(context.Context, uuid.UUID) (string, error) {
	return d.email, nil
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockNotificationRepo())

	if _, err := svc.Create(ctx, CreateInput{Title: "t"}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing user err = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, CreateInput{UserID: uuid.New()}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing title err = %v, want ErrValidation", err)
	}
	n, err := svc.Create(ctx, CreateInput{UserID: uuid.New(), Title: "t", Message: "m"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Type != "general" {
		t.Errorf("type = %s, want general default", n.Type)
	}
}
