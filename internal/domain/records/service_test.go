package records

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRecordRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*HealthRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{items: make(map[uuid.UUID]*HealthRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, r *HealthRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*HealthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *HealthRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*HealthRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*HealthRecord
	for _, r := range m.items {
		if p, ok := params["student"]; ok && r.StudentID.String() != p {
			continue
		}
		if p, ok := params["provider"]; ok && r.ProviderID.String() != p {
			continue
		}
		if p, ok := params["verified"]; ok {
			if (p == "true") != r.IsVerified {
				continue
			}
		}
		cp := *r
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].RecordDate.After(matched[j].RecordDate) })
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

type mockPrescriptionRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Prescription
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{items: make(map[uuid.UUID]*Prescription)}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPrescriptionRepo) Update(_ context.Context, p *Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*Prescription
	for _, p := range m.items {
		if v, ok := params["student"]; ok && p.StudentID.String() != v {
			continue
		}
		if v, ok := params["provider"]; ok && p.ProviderID.String() != v {
			continue
		}
		cp := *p
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

type capturedNotice struct {
	userID uuid.UUID
	kind   string
}

type mockNotices struct {
	mu   sync.Mutex
	sent []capturedNotice
}

func (m *mockNotices) Notify(_ context.Context, userID uuid.UUID, kind, _, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedNotice{userID, kind})
}

func newTestService() (*Service, *mockNotices) {
	notices := &mockNotices{}
	return NewService(newMockRecordRepo(), newMockPrescriptionRepo(), nil, notices), notices
}

func TestCreateRecordDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	provider := uuid.New()
	student := uuid.New()

	rec, err := svc.CreateRecord(ctx, provider, CreateRecordInput{
		StudentID: student,
		Diagnosis: "Seasonal allergies",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if rec.Confidentiality != ConfidentialityMedium {
		t.Errorf("confidentiality = %s, want MEDIUM", rec.Confidentiality)
	}
	if rec.IsVerified {
		t.Error("new records should start unverified")
	}
	if rec.RecordDate.IsZero() {
		t.Error("record date should default to now")
	}
}

func TestCreateRecordValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	bad := Confidentiality("TOP_SECRET")

	cases := []struct {
		name string
		in   CreateRecordInput
	}{
		{"missing student", CreateRecordInput{Diagnosis: "x"}},
		{"missing diagnosis", CreateRecordInput{StudentID: uuid.New()}},
		{"blank diagnosis", CreateRecordInput{StudentID: uuid.New(), Diagnosis: "   "}},
		{"bad confidentiality", CreateRecordInput{StudentID: uuid.New(), Diagnosis: "x", Confidentiality: &bad}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateRecord(ctx, uuid.New(), tc.in); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateRecordPartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	provider := uuid.New()

	treatment := "rest and fluids"
	rec, err := svc.CreateRecord(ctx, provider, CreateRecordInput{
		StudentID: uuid.New(),
		Diagnosis: "Influenza",
		Treatment: &treatment,
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	high := ConfidentialityHigh
	updated, err := svc.UpdateRecord(ctx, provider, rec.ID, UpdateRecordInput{Confidentiality: &high})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if updated.Confidentiality != ConfidentialityHigh {
		t.Errorf("confidentiality = %s, want HIGH", updated.Confidentiality)
	}
	if updated.Diagnosis != "Influenza" {
		t.Error("unset diagnosis should be preserved")
	}
	if updated.Treatment == nil || *updated.Treatment != treatment {
		t.Error("unset treatment should be preserved")
	}
}

func TestUpdateRecordScopedToProvider(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	rec, err := svc.CreateRecord(ctx, uuid.New(), CreateRecordInput{StudentID: uuid.New(), Diagnosis: "x"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	d := "y"
	if _, err := svc.UpdateRecord(ctx, uuid.New(), rec.ID, UpdateRecordInput{Diagnosis: &d}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign update err = %v, want ErrNotFound", err)
	}
}

func TestVerifyRecordIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	provider := uuid.New()

	rec, err := svc.CreateRecord(ctx, provider, CreateRecordInput{StudentID: uuid.New(), Diagnosis: "x"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	v1, err := svc.VerifyRecord(ctx, provider, rec.ID)
	if err != nil || !v1.IsVerified {
		t.Fatalf("first verify: %v, verified=%v", err, v1.IsVerified)
	}
	v2, err := svc.VerifyRecord(ctx, provider, rec.ID)
	if err != nil || !v2.IsVerified {
		t.Fatalf("second verify: %v, verified=%v", err, v2.IsVerified)
	}
}

func TestStudentReadsOwnRecordsOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	provider := uuid.New()
	student := uuid.New()

	rec, err := svc.CreateRecord(ctx, provider, CreateRecordInput{StudentID: student, Diagnosis: "x"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	if _, err := svc.GetRecordForStudent(ctx, student, rec.ID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := svc.GetRecordForStudent(ctx, uuid.New(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign read err = %v, want ErrNotFound", err)
	}

	items, total, err := svc.ListRecordsForStudent(ctx, student, 20, 0)
	if err != nil || total != 1 || len(items) != 1 {
		t.Errorf("list: err=%v total=%d len=%d", err, total, len(items))
	}
}

func TestCreatePrescriptionNotifiesStudent(t *testing.T) {
	ctx := context.Background()
	svc, notices := newTestService()
	student := uuid.New()

	p, err := svc.CreatePrescription(ctx, uuid.New(), CreatePrescriptionInput{
		StudentID:  student,
		Medication: "Ibuprofen",
		Dosage:     "200mg",
		Frequency:  "twice daily",
	})
	if err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	if p.StartDate.IsZero() {
		t.Error("start date should default to now")
	}
	if len(notices.sent) != 1 || notices.sent[0].userID != student {
		t.Errorf("notices = %+v, want one to the student", notices.sent)
	}
}

func TestCreatePrescriptionValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	start := time.Now()
	end := start.Add(-time.Hour)

	cases := []struct {
		name string
		in   CreatePrescriptionInput
	}{
		{"missing student", CreatePrescriptionInput{Medication: "x", Dosage: "y", Frequency: "z"}},
		{"missing medication", CreatePrescriptionInput{StudentID: uuid.New(), Dosage: "y", Frequency: "z"}},
		{"missing dosage", CreatePrescriptionInput{StudentID: uuid.New(), Medication: "x", Frequency: "z"}},
		{"end before start", CreatePrescriptionInput{StudentID: uuid.New(), Medication: "x", Dosage: "y", Frequency: "z", StartDate: &start, EndDate: &end}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreatePrescription(ctx, uuid.New(), tc.in); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdatePrescriptionPartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	provider := uuid.New()

	p, err := svc.CreatePrescription(ctx, provider, CreatePrescriptionInput{
		StudentID:  uuid.New(),
		Medication: "Ibuprofen",
		Dosage:     "200mg",
		Frequency:  "twice daily",
	})
	if err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}

	dosage := "400mg"
	updated, err := svc.UpdatePrescription(ctx, provider, p.ID, UpdatePrescriptionInput{Dosage: &dosage})
	if err != nil {
		t.Fatalf("UpdatePrescription: %v", err)
	}
	if updated.Dosage != dosage {
		t.Errorf("dosage = %s, want %s", updated.Dosage, dosage)
	}
	if updated.Medication != "Ibuprofen" {
		t.Error("unset medication should be preserved")
	}

	blank := " "
	if _, err := svc.UpdatePrescription(ctx, provider, p.ID, UpdatePrescriptionInput{Medication: &blank}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank medication err = %v, want ErrValidation", err)
	}
}

func TestListRecordsForProviderVerifiedFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	provider := uuid.New()

	a, err := svc.CreateRecord(ctx, provider, CreateRecordInput{StudentID: uuid.New(), Diagnosis: "a"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if _, err := svc.CreateRecord(ctx, provider, CreateRecordInput{StudentID: uuid.New(), Diagnosis: "b"}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if _, err := svc.VerifyRecord(ctx, provider, a.ID); err != nil {
		t.Fatalf("VerifyRecord: %v", err)
	}

	items, total, err := svc.ListRecordsForProvider(ctx, provider, map[string]string{"verified": "true"}, 20, 0)
	if err != nil {
		t.Fatalf("ListRecordsForProvider: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != a.ID {
		t.Errorf("expected only the verified record, got total=%d len=%d", total, len(items))
	}
}
