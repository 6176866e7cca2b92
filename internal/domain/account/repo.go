package account

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error)
}

type StudentProfileRepository interface {
	Create(ctx context.Context, p *StudentProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*StudentProfile, error)
	Update(ctx context.Context, p *StudentProfile) error
}

type ProviderProfileRepository interface {
	Create(ctx context.Context, p *ProviderProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*ProviderProfile, error)
	Update(ctx context.Context, p *ProviderProfile) error
}
