package ports

import (
	"context"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID.
	// Uniqueness violations map to domain.ErrUsernameTaken / domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// DeleteByUsername removes the account if present. Used by the demo seed only.
	DeleteByUsername(ctx context.Context, username string) error
}
