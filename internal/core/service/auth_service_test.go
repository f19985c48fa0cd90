package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
	err    error // returned by every lookup when set
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) DeleteByUsername(_ context.Context, username string) error {
	delete(r.users, username)
	return nil
}

func newTestAuthService(repo ports.UserRepository) *AuthService {
	return NewAuthService(repo, AuthOptions{
		JWTSecret:  "secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop())
}

func citizen(username, email string) ports.RegisterInput {
	return ports.RegisterInput{Username: username, Email: email, Password: "pass123", FullName: "Test User"}
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	return claims
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	res, err := svc.Register(context.Background(), citizen("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected token, got empty")
	}
	if res.Role != domain.RoleCitizen {
		t.Fatalf("role must default to CITIZEN, got %s", res.Role)
	}

	stored := repo.users["alice"]
	if stored.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.CreatedAt.IsZero() || !stored.UpdatedAt.Equal(stored.CreatedAt) {
		t.Fatalf("timestamps not initialised: %+v", stored)
	}

	claims := parseClaims(t, res.Token)
	if claims["username"] != "alice" || claims["role"] != string(domain.RoleCitizen) {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Register_AuthorityDomain(t *testing.T) {
	cases := []struct {
		email   string
		wantErr error
	}{
		{"alice@gov.ac.in", nil},
		{"ALICE@GOV.AC.IN", nil},
		{"alice@gmail.com", domain.ErrInvalidAuthorityDomain},
		{"alice@gov.ac.in.example.com", domain.ErrInvalidAuthorityDomain},
	}

	for _, tc := range cases {
		svc := newTestAuthService(newStubUserRepo())
		in := citizen("alice", tc.email)
		in.Role = "AUTHORITY"

		res, err := svc.Register(context.Background(), in)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("email=%q: expected %v, got %v", tc.email, tc.wantErr, err)
			continue
		}
		if tc.wantErr == nil && res.Role != domain.RoleAuthority {
			t.Errorf("email=%q: expected AUTHORITY role, got %s", tc.email, res.Role)
		}
	}
}

func TestAuthService_Register_CitizenAnyDomain(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	if _, err := svc.Register(context.Background(), citizen("bob", "bob@gmail.com")); err != nil {
		t.Fatalf("citizen registration must not check domain: %v", err)
	}
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), citizen("bob", "bob@example.com"))
	_, err := svc.Register(context.Background(), citizen("bob", "other@example.com"))
	if err != domain.ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), citizen("bob", "bob@example.com"))
	_, err := svc.Register(context.Background(), citizen("robert", "bob@example.com"))
	if err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_UsernameCheckedBeforeDomain(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	_, _ = svc.Register(context.Background(), citizen("carol", "carol@example.com"))

	in := citizen("carol", "carol@gmail.com")
	in.Role = "AUTHORITY"
	if _, err := svc.Register(context.Background(), in); err != domain.ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	in := citizen("dave", "dave@example.com")
	in.Role = "admin"
	if _, err := svc.Register(context.Background(), in); err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_Login_ByUsernameAndEmail(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	in := citizen("carol", "carol@gov.ac.in")
	in.Role = "AUTHORITY"
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, id := range []string{"carol", "carol@gov.ac.in"} {
		res, err := svc.Login(context.Background(), id, "pass123")
		if err != nil {
			t.Fatalf("login with %q failed: %v", id, err)
		}
		if res.Username != "carol" || res.Role != domain.RoleAuthority {
			t.Fatalf("unexpected result: %+v", res)
		}
		claims := parseClaims(t, res.Token)
		if claims["role"] != string(domain.RoleAuthority) {
			t.Fatalf("expected role %s, got %v", domain.RoleAuthority, claims["role"])
		}
		if _, ok := claims["exp"]; !ok {
			t.Fatal("token must carry exp")
		}
	}
}

func TestAuthService_Login_FailuresAreUndifferentiated(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	_, _ = svc.Register(context.Background(), citizen("dave", "dave@example.com"))

	_, wrongPassword := svc.Login(context.Background(), "dave", "badpass")
	_, unknownUser := svc.Login(context.Background(), "ghost", "pass123")

	if wrongPassword != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if unknownUser != wrongPassword {
		t.Fatalf("unknown user and wrong password must yield the same error: %v vs %v", unknownUser, wrongPassword)
	}
}

func TestAuthService_Login_RepoError(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("db down")
	svc := newTestAuthService(repo)

	if _, err := svc.Login(context.Background(), "dave", "pass"); err == nil || err == domain.ErrInvalidCredentials {
		t.Fatalf("expected infrastructure error to propagate, got %v", err)
	}
}

func TestAuthService_ExpiredTokenRejected(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	res, err := svc.Register(context.Background(), citizen("erin", "erin@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err = jwt.Parse(res.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestAuthService_SeedDemoUsers(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	// Seeding twice must succeed: existing demo accounts are replaced.
	for i := 0; i < 2; i++ {
		if err := svc.SeedDemoUsers(context.Background()); err != nil {
			t.Fatalf("seed #%d failed: %v", i+1, err)
		}
	}
	if _, err := svc.Login(context.Background(), "testauthority", DemoPassword); err != nil {
		t.Fatalf("demo authority login failed: %v", err)
	}
	if repo.users["testauthority"].Role != domain.RoleAuthority {
		t.Fatalf("demo authority has role %s", repo.users["testauthority"].Role)
	}
}
