package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/campushealth/internal/platform/auth"
)

// -- Mock Repositories --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		if role, ok := params["role"]; ok && u.Role != role {
			continue
		}
		result = append(result, u)
	}
	return result, len(result), nil
}

type mockStudentProfileRepo struct {
	profiles map[uuid.UUID]*StudentProfile
}

func newMockStudentProfileRepo() *mockStudentProfileRepo {
	return &mockStudentProfileRepo{profiles: make(map[uuid.UUID]*StudentProfile)}
}

func (m *mockStudentProfileRepo) Create(_ context.Context, p *StudentProfile) error {
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockStudentProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*StudentProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockStudentProfileRepo) Update(_ context.Context, p *StudentProfile) error {
	m.profiles[p.UserID] = p
	return nil
}

type mockProviderProfileRepo struct {
	profiles map[uuid.UUID]*ProviderProfile
}

func newMockProviderProfileRepo() *mockProviderProfileRepo {
	return &mockProviderProfileRepo{profiles: make(map[uuid.UUID]*ProviderProfile)}
}

func (m *mockProviderProfileRepo) Create(_ context.Context, p *ProviderProfile) error {
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockProviderProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*ProviderProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockProviderProfileRepo) Update(_ context.Context, p *ProviderProfile) error {
	m.profiles[p.UserID] = p
	return nil
}

func newTestService(t *testing.T) (*Service, *mockUserRepo, *auth.RevocationList) {
	t.Helper()
	users := newMockUserRepo()
	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute, 168*time.Hour)
	revoked := auth.NewRevocationList()
	t.Cleanup(revoked.Close)
	svc := NewService(users, newMockStudentProfileRepo(), newMockProviderProfileRepo(), issuer, revoked, nil, nil)
	return svc, users, revoked
}

// -- Tests --

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{
		Email:    "Amina@Campus.edu",
		Password: "password123",
		Role:     auth.RoleStudent,
		Name:     "Amina Yusuf",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "amina@campus.edu" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password stored in plaintext")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected token pair on register")
	}

	loggedIn, loginPair, err := svc.Login(ctx, "amina@campus.edu", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("login returned user %s, want %s", loggedIn.ID, user.ID)
	}

	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute, 168*time.Hour)
	claims, err := issuer.Verify(loginPair.AccessToken, auth.TokenTypeAccess)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("token subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Role != auth.RoleStudent {
		t.Errorf("token role = %q, want STUDENT", claims.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := RegisterInput{Email: "dup@campus.edu", Password: "password123", Name: "First"}
	if _, _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, _, err := svc.Register(ctx, in)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second Register: err = %v, want ErrConflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Password: "password123", Name: "X"}},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "password123", Name: "X"}},
		{"short password", RegisterInput{Email: "x@campus.edu", Password: "short", Name: "X"}},
		{"missing name", RegisterInput{Email: "x@campus.edu", Password: "password123"}},
		{"admin role", RegisterInput{Email: "x@campus.edu", Password: "password123", Name: "X", Role: auth.RoleAdmin}},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(ctx, tc.in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestRegisterCreatesRoleProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	dept := "Computer Science"
	student, _, err := svc.Register(ctx, RegisterInput{
		Email: "s@campus.edu", Password: "password123", Name: "Student", Department: &dept,
	})
	if err != nil {
		t.Fatalf("Register student: %v", err)
	}
	sp, err := svc.GetStudentProfile(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetStudentProfile: %v", err)
	}
	if sp.Name != "Student" || sp.Department == nil || *sp.Department != dept {
		t.Errorf("unexpected student profile: %+v", sp)
	}

	spec := "General Medicine"
	provider, _, err := svc.Register(ctx, RegisterInput{
		Email: "p@campus.edu", Password: "password123", Name: "Provider",
		Role: auth.RoleProvider, Specialty: &spec,
	})
	if err != nil {
		t.Fatalf("Register provider: %v", err)
	}
	pp, err := svc.GetProviderProfile(ctx, provider.ID)
	if err != nil {
		t.Fatalf("GetProviderProfile: %v", err)
	}
	if pp.Specialty == nil || *pp.Specialty != spec {
		t.Errorf("unexpected provider profile: %+v", pp)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Email: "a@campus.edu", Password: "password123", Name: "A"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "a@campus.edu", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "unknown@campus.edu", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}

	users.users[user.ID].IsActive = false
	if _, _, err := svc.Login(ctx, "a@campus.edu", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("inactive account: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, RegisterInput{Email: "r@campus.edu", Password: "password123", Name: "R"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if newPair.AccessToken == pair.AccessToken {
		t.Error("expected a new access token")
	}

	// The presented refresh token was revoked; a replay must fail.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("replayed refresh: err = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, pair, _ := svc.Register(ctx, RegisterInput{Email: "r2@campus.edu", Password: "password123", Name: "R"})
	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("access token as refresh: err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, pair, _ := svc.Register(ctx, RegisterInput{Email: "l@campus.edu", Password: "password123", Name: "L"})

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("refresh after logout: err = %v, want ErrInvalidToken", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("second logout: err = %v, want ErrInvalidToken", err)
	}
}

func TestUpdateStudentProfilePartial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	dept := "Physics"
	user, _, _ := svc.Register(ctx, RegisterInput{
		Email: "u@campus.edu", Password: "password123", Name: "Original", Department: &dept,
	})

	year := 3
	p, err := svc.UpdateStudentProfile(ctx, user.ID, UpdateStudentProfileInput{YearOfStudy: &year})
	if err != nil {
		t.Fatalf("UpdateStudentProfile: %v", err)
	}
	if p.Name != "Original" {
		t.Errorf("Name = %q, want unchanged Original", p.Name)
	}
	if p.Department == nil || *p.Department != "Physics" {
		t.Error("department should be unchanged")
	}
	if p.YearOfStudy == nil || *p.YearOfStudy != 3 {
		t.Error("year of study not applied")
	}

	empty := ""
	if _, err := svc.UpdateStudentProfile(ctx, user.ID, UpdateStudentProfileInput{Name: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty name: err = %v, want ErrValidation", err)
	}
}

func TestDeactivateUserStopsAuth(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, _, _ := svc.Register(ctx, RegisterInput{Email: "d@campus.edu", Password: "password123", Name: "D"})

	active, err := svc.IsActive(ctx, user.ID)
	if err != nil || !active {
		t.Fatalf("IsActive before deactivate = %v, %v", active, err)
	}

	if _, err := svc.DeactivateUser(ctx, user.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}

	active, err = svc.IsActive(ctx, user.ID)
	if err != nil {
		t.Fatalf("IsActive: %v", err)
	}
	if active {
		t.Error("expected inactive after deactivation")
	}
}

func TestProviderExists(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	student, _, _ := svc.Register(ctx, RegisterInput{Email: "s2@campus.edu", Password: "password123", Name: "S"})
	provider, _, _ := svc.Register(ctx, RegisterInput{
		Email: "p2@campus.edu", Password: "password123", Name: "P", Role: auth.RoleProvider,
	})

	if ok, _ := svc.ProviderExists(ctx, provider.ID); !ok {
		t.Error("expected provider to exist")
	}
	if ok, _ := svc.ProviderExists(ctx, student.ID); ok {
		t.Error("student must not count as provider")
	}
	if ok, _ := svc.ProviderExists(ctx, uuid.New()); ok {
		t.Error("unknown id must not count as provider")
	}
}

func TestErrorMessagesDoNotLeakEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.Register(ctx, RegisterInput{Email: "leak@campus.edu", Password: "password123", Name: "L"})

	_, _, errKnown := svc.Login(ctx, "leak@campus.edu", "wrong")
	_, _, errUnknown := svc.Login(ctx, "nobody@campus.edu", "wrong")
	if errKnown == nil || errUnknown == nil {
		t.Fatal("expected both logins to fail")
	}
	if !strings.EqualFold(errKnown.Error(), errUnknown.Error()) {
		t.Errorf("error messages differ: %q vs %q", errKnown, errUnknown)
	}
}
