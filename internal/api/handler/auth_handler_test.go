package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, usernameOrEmail, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, usernameOrEmail, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, usernameOrEmail, password)
}

// newEcho returns an Echo instance configured like the production router.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Username != "alice" || in.Email != "alice@gov.ac.in" || in.Role != "AUTHORITY" || in.FullName != "Alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{Token: "tok", Username: "alice", Role: domain.RoleAuthority, ExpiresAt: time.Now()}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@gov.ac.in","password":"secret123","full_name":"Alice","role":"AUTHORITY"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var data authResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if !env.Success || data.Token != "tok" || data.Role != domain.RoleAuthority {
		t.Fatalf("unexpected response: %+v %+v", env, data)
	}
}

func TestAuthHandler_Register_DomainFailuresAre200(t *testing.T) {
	cases := map[error]string{
		domain.ErrUsernameTaken:          "Username already exists",
		domain.ErrEmailTaken:             "Email already exists",
		domain.ErrInvalidAuthorityDomain: "Government authorities must use an institutional email address",
	}
	for domainErr, wantMsg := range cases {
		e := newEcho()
		stub := &stubAuthService{
			registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
				return nil, domainErr
			},
		}

		req := jsonRequest(http.MethodPost, "/api/auth/register",
			`{"username":"bob","email":"bob@example.com","password":"secret123"}`)
		rec := httptest.NewRecorder()
		if err := NewAuthHandler(stub).Register(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}

		env := decodeEnvelope(t, rec)
		if rec.Code != http.StatusOK || env.Success || env.Message != wantMsg {
			t.Errorf("%v: got %d %+v", domainErr, rec.Code, env)
		}
	}
}

func TestAuthHandler_Register_RoleIsCaseInsensitive(t *testing.T) {
	for _, role := range []string{"Authority", "authority", "AUTHORITY", "Citizen"} {
		e := newEcho()
		var got string
		stub := &stubAuthService{
			registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
				got = in.Role
				return &ports.AuthResult{Token: "tok", Username: in.Username, Role: domain.RoleAuthority, ExpiresAt: time.Now()}, nil
			},
		}

		body := `{"username":"alice","email":"alice@gov.ac.in","password":"secret123","role":"` + role + `"}`
		rec := httptest.NewRecorder()
		if err := NewAuthHandler(stub).Register(e.NewContext(jsonRequest(http.MethodPost, "/", body), rec)); err != nil {
			t.Fatalf("%s: handler error: %v", role, err)
		}
		if rec.Code != http.StatusOK || got != role {
			t.Errorf("%s: expected role passed through with 200, got %d role=%q", role, rec.Code, got)
		}
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	bodies := []string{
		"not-json",
		`{"username":"al","email":"al@example.com","password":"secret123"}`,
		`{"username":"alice","email":"not-an-email","password":"secret123"}`,
		`{"username":"alice","email":"alice@example.com","password":"123"}`,
		`{"username":"alice","email":"alice@example.com","password":"secret123","role":"ADMIN"}`,
	}
	for _, body := range bodies {
		e := newEcho()
		stub := &stubAuthService{
			registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
				t.Fatalf("should not be called for %s", body)
				return nil, nil
			},
		}

		rec := httptest.NewRecorder()
		_ = NewAuthHandler(stub).Register(e.NewContext(jsonRequest(http.MethodPost, "/", body), rec))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Success || env.Message == "" {
			t.Errorf("%s: expected failure envelope with message, got %+v", body, env)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, id, password string) (*ports.AuthResult, error) {
			if id != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", id, password)
			}
			return &ports.AuthResult{Token: "tok", Username: "alice", Role: domain.RoleCitizen}, nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice@example.com","password":"secret"}`), rec)
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || !env.Success || env.Message != "Login successful" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, env)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrong"}`), rec)
	_ = NewAuthHandler(stub).Login(c)

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusOK || env.Success || env.Message != "Invalid username/email or password" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, env)
	}
}

func TestAuthHandler_Login_UnexpectedErrorIs500(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, errors.New("db unavailable")
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw"}`), rec)
	err := NewAuthHandler(stub).Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPError, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "db unavailable") {
		t.Fatalf("message must name the cause, got %v", he.Message)
	}
}
