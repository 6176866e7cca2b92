package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushealth/campushealth/internal/platform/auth"
	"github.com/campushealth/campushealth/internal/platform/db"
)

// ActivityRecorder receives best-effort activity log entries. Implemented by
// the audit service; a nil recorder disables recording.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, action, detail string)
}

var validRegisterRoles = map[string]bool{
	auth.RoleStudent:  true,
	auth.RoleProvider: true,
	auth.RoleStaff:    true,
}

type Service struct {
	users     UserRepository
	students  StudentProfileRepository
	providers ProviderProfileRepository
	issuer    *auth.TokenIssuer
	revoked   *auth.RevocationList
	recorder  ActivityRecorder
	pool      *pgxpool.Pool
}

func NewService(users UserRepository, students StudentProfileRepository, providers ProviderProfileRepository,
	issuer *auth.TokenIssuer, revoked *auth.RevocationList, recorder ActivityRecorder, pool *pgxpool.Pool) *Service {
	return &Service{
		users:     users,
		students:  students,
		providers: providers,
		issuer:    issuer,
		revoked:   revoked,
		recorder:  recorder,
		pool:      pool,
	}
}

// runTx executes fn inside a transaction when a pool is configured. Tests
// wire mock repositories and no pool, in which case fn runs directly.
func (s *Service) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`

	// Student profile fields
	Department  *string    `json:"department"`
	YearOfStudy *int       `json:"year_of_study"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	// Provider profile fields
	Specialty     *string `json:"specialty"`
	LicenseNumber *string `json:"license_number"`

	Phone *string `json:"phone"`
}

// Register creates a user plus its role profile and returns a token pair so
// the caller is signed in immediately. A duplicate email is ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, *auth.TokenPair, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if in.Role == "" {
		in.Role = auth.RoleStudent
	}
	if !validRegisterRoles[in.Role] {
		return nil, nil, fmt.Errorf("%w: invalid role %q", ErrValidation, in.Role)
	}
	if in.Name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		switch in.Role {
		case auth.RoleStudent:
			return s.students.Create(ctx, &StudentProfile{
				UserID:      user.ID,
				Name:        in.Name,
				Department:  in.Department,
				YearOfStudy: in.YearOfStudy,
				DateOfBirth: in.DateOfBirth,
				Phone:       in.Phone,
			})
		case auth.RoleProvider:
			return s.providers.Create(ctx, &ProviderProfile{
				UserID:        user.ID,
				Name:          in.Name,
				Specialty:     in.Specialty,
				LicenseNumber: in.LicenseNumber,
				Phone:         in.Phone,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, user.ID, "account.register", "registered as "+user.Role)
	}
	return user, pair, nil
}

// Login verifies the credentials and returns a fresh token pair. Unknown
// email, wrong password and inactive account all report
// ErrInvalidCredentials so callers cannot probe for registered emails.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *auth.TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.IsActive || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordActivity(ctx, user.ID, "account.login", "signed in")
	}
	return user, pair, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new pair. The
// presented refresh token is revoked so each one can be used once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.issuer.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if s.revoked.IsRevoked(claims.ID) {
		return nil, auth.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, auth.ErrInvalidToken
	}

	s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
	return s.issuer.Issue(user.ID, user.Role)
}

// Logout revokes the presented refresh token. An already-invalid token is
// reported as such; logging out twice with the same token fails the second
// time because the first call revoked it.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return auth.ErrInvalidToken
	}
	if s.revoked.IsRevoked(claims.ID) {
		return auth.ErrInvalidToken
	}
	s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)

	if userID, err := uuid.Parse(claims.Subject); err == nil && s.recorder != nil {
		s.recorder.RecordActivity(ctx, userID, "account.logout", "signed out")
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetStudentProfile(ctx context.Context, userID uuid.UUID) (*StudentProfile, error) {
	return s.students.GetByUserID(ctx, userID)
}

func (s *Service) GetProviderProfile(ctx context.Context, userID uuid.UUID) (*ProviderProfile, error) {
	return s.providers.GetByUserID(ctx, userID)
}

type UpdateStudentProfileInput struct {
	Name        *string    `json:"name"`
	Department  *string    `json:"department"`
	YearOfStudy *int       `json:"year_of_study"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Phone       *string    `json:"phone"`
}

// UpdateStudentProfile applies a partial update; nil fields keep their
// stored values.
func (s *Service) UpdateStudentProfile(ctx context.Context, userID uuid.UUID, in UpdateStudentProfileInput) (*StudentProfile, error) {
	p, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		p.Name = *in.Name
	}
	if in.Department != nil {
		p.Department = in.Department
	}
	if in.YearOfStudy != nil {
		p.YearOfStudy = in.YearOfStudy
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if err := s.students.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateProviderProfileInput struct {
	Name          *string `json:"name"`
	Specialty     *string `json:"specialty"`
	LicenseNumber *string `json:"license_number"`
	Phone         *string `json:"phone"`
}

// UpdateProviderProfile applies a partial update; nil fields keep their
// stored values.
func (s *Service) UpdateProviderProfile(ctx context.Context, userID uuid.UUID, in UpdateProviderProfileInput) (*ProviderProfile, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		p.Name = *in.Name
	}
	if in.Specialty != nil {
		p.Specialty = in.Specialty
	}
	if in.LicenseNumber != nil {
		p.LicenseNumber = in.LicenseNumber
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if err := s.providers.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListUsers(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, params, limit, offset)
}

// DeactivateUser disables an account. Existing access tokens stop working at
// the auth middleware, which re-checks the active flag on every request.
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// IsActive implements auth.UserSource for the bearer-token middleware.
func (s *Service) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive, nil
}

// ProviderExists reports whether id names an active provider account.
// Consulted by scheduling before booking an appointment.
func (s *Service) ProviderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive && user.Role == auth.RoleProvider, nil
}

// EmailForUser resolves a user id to their email address. Consulted by the
// notices service when mirroring notifications to email.
func (s *Service) EmailForUser(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
