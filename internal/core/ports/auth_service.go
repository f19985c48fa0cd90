package ports

import (
	"context"
	"time"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string // empty defaults to CITIZEN
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token     string
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error)
}
