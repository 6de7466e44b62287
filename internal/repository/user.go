package repository

import (
	"context"
	"time"

	"courier/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateLastLogin stamps last_login_at for the named user and returns the
	// stored value. ErrUserNotFound when no such row exists.
	UpdateLastLogin(ctx context.Context, username string, at time.Time) (time.Time, error)
	ListAll(ctx context.Context) ([]domain.UserSummary, error)
}
