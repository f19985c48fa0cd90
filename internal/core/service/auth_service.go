package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

// AuthOptions configures token issuance and registration rules.
type AuthOptions struct {
	JWTSecret       string
	TokenTTL        time.Duration
	AuthorityDomain string
	BcryptCost      int
}

// AuthService implements registration and login.
type AuthService struct {
	repo ports.UserRepository
	opts AuthOptions
	log  zerolog.Logger
	now  func() time.Time
}

func NewAuthService(repo ports.UserRepository, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.AuthorityDomain == "" {
		opts.AuthorityDomain = "@gov.ac.in"
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{repo: repo, opts: opts, log: log, now: time.Now}
}

// Register creates an account and returns a token for it. Checks run in the
// order username, email, authority domain.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAbsent(ctx, s.repo.FindByUsername, in.Username, domain.ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.repo.FindByEmail, in.Email, domain.ErrEmailTaken); err != nil {
		return nil, err
	}
	if role == domain.RoleAuthority && !domain.HasAuthorityDomain(in.Email, s.opts.AuthorityDomain) {
		return nil, domain.ErrInvalidAuthorityDomain
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return s.issue(created)
}

// Login authenticates by username first, then by email. Every failure is
// reported as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*ports.AuthResult, error) {
	if usernameOrEmail == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, usernameOrEmail)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.repo.FindByEmail(ctx, usernameOrEmail)
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// DemoAccount describes a fixed account created by SeedDemoUsers.
type DemoAccount struct {
	Username string
	Email    string
	FullName string
	Role     domain.Role
}

// DemoAccounts are recreated at startup when demo seeding is enabled.
var DemoAccounts = []DemoAccount{
	{Username: "testauthority", Email: "authority@gov.ac.in", FullName: "Test Authority", Role: domain.RoleAuthority},
	{Username: "testcitizen", Email: "citizen@example.com", FullName: "Test Citizen", Role: domain.RoleCitizen},
}

// DemoPassword is the password shared by all demo accounts.
const DemoPassword = "password123"

// SeedDemoUsers deletes and recreates the demo accounts.
func (s *AuthService) SeedDemoUsers(ctx context.Context) error {
	for _, acc := range DemoAccounts {
		if err := s.repo.DeleteByUsername(ctx, acc.Username); err != nil {
			return fmt.Errorf("seed %s: %w", acc.Username, err)
		}
		if _, err := s.Register(ctx, ports.RegisterInput{
			Username: acc.Username,
			Email:    acc.Email,
			Password: DemoPassword,
			FullName: acc.FullName,
			Role:     string(acc.Role),
		}); err != nil {
			return fmt.Errorf("seed %s: %w", acc.Username, err)
		}
	}
	s.log.Warn().Int("accounts", len(DemoAccounts)).Msg("demo accounts seeded")
	return nil
}

func (s *AuthService) ensureAbsent(ctx context.Context, find func(context.Context, string) (*domain.User, error), key string, taken error) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	now := s.now()
	expires := now.Add(s.opts.TokenTTL)
	claims := jwt.MapClaims{
		"sub":      user.Username,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      expires.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.AuthResult{
		Token:     signed,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: expires.UTC(),
	}, nil
}
