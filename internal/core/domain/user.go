package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the access level carried by a user and embedded in its token.
type Role string

const (
	RoleCitizen   Role = "CITIZEN"
	RoleAuthority Role = "AUTHORITY"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUsernameTaken          = errors.New("username already exists")
	ErrEmailTaken             = errors.New("email already exists")
	ErrInvalidAuthorityDomain = errors.New("authority email outside institutional domain")
	ErrInvalidCredentials     = errors.New("invalid username/email or password")
	ErrInvalidRole            = errors.New("invalid role")
	ErrForbidden              = errors.New("access forbidden")
)

// ParseRole normalises a client-supplied role. An empty value means CITIZEN.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleCitizen:
		return RoleCitizen, nil
	case RoleAuthority:
		return RoleAuthority, nil
	default:
		return "", ErrInvalidRole
	}
}

// HasAuthorityDomain reports whether email ends with suffix, ignoring case.
func HasAuthorityDomain(email, suffix string) bool {
	if email == "" || suffix == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), strings.ToLower(suffix))
}

// User models an account of either a citizen or an authority.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
