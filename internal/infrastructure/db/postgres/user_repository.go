package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, full_name, role, created_at, updated_at`

// UserRepository implements ports.UserRepository on the users table.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return nil, mapUserConflict(constraint)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// DeleteByUsername removes the user if present. Fines issued by the user keep
// their denormalized issuer name; the foreign key is set to NULL.
func (r *UserRepository) DeleteByUsername(ctx context.Context, username string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func mapUserConflict(constraint string) error {
	switch constraint {
	case "users_email_key":
		return domain.ErrEmailTaken
	default:
		return domain.ErrUsernameTaken
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
