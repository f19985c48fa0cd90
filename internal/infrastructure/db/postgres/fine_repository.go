package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

var _ ports.FineRepository = (*FineRepository)(nil)

const fineColumns = `id, license_plate_number, amount::float8, violation_type, description,
	violation_date, due_date, status, issued_by, issued_by_username, created_at, updated_at`

// FineRepository implements ports.FineRepository on the fines table.
type FineRepository struct {
	pool *pgxpool.Pool
}

func NewFineRepository(pool *pgxpool.Pool) *FineRepository {
	return &FineRepository{pool: pool}
}

func (r *FineRepository) Create(ctx context.Context, f *domain.Fine) (*domain.Fine, error) {
	query := `
		INSERT INTO fines (license_plate_number, amount, violation_type, description, violation_date,
			due_date, status, issued_by, issued_by_username, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + fineColumns
	row := r.pool.QueryRow(ctx, query,
		f.PlateNumber, f.Amount, f.ViolationType, f.Description, f.ViolationDate,
		f.DueDate, string(f.Status), f.IssuedByID, f.IssuedByUsername, f.CreatedAt, f.UpdatedAt)

	created, err := scanFine(row)
	if err != nil {
		return nil, fmt.Errorf("insert fine: %w", err)
	}
	return created, nil
}

func (r *FineRepository) FindByID(ctx context.Context, id int64) (*domain.Fine, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fineColumns+` FROM fines WHERE id = $1`, id)
	f, err := scanFine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find fine: %w", err)
	}
	return f, nil
}

func (r *FineRepository) FindByPlate(ctx context.Context, plate string) ([]*domain.Fine, error) {
	return r.query(ctx, `SELECT `+fineColumns+` FROM fines
		WHERE license_plate_number = $1
		ORDER BY violation_date DESC, id DESC`, plate)
}

func (r *FineRepository) FindByPlateAndStatus(ctx context.Context, plate string, status domain.FineStatus) ([]*domain.Fine, error) {
	return r.query(ctx, `SELECT `+fineColumns+` FROM fines
		WHERE license_plate_number = $1 AND status = $2
		ORDER BY violation_date DESC, id DESC`, plate, string(status))
}

func (r *FineRepository) FindAll(ctx context.Context) ([]*domain.Fine, error) {
	return r.query(ctx, `SELECT `+fineColumns+` FROM fines ORDER BY id`)
}

// SearchByPlate matches plates containing term, ignoring case. LIKE
// wildcards in term match literally.
func (r *FineRepository) SearchByPlate(ctx context.Context, term string) ([]*domain.Fine, error) {
	return r.query(ctx, `SELECT `+fineColumns+` FROM fines
		WHERE license_plate_number ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY violation_date DESC, id DESC`, escapeLike(term))
}

func (r *FineRepository) UpdateStatus(ctx context.Context, id int64, status domain.FineStatus, at time.Time) (*domain.Fine, error) {
	row := r.pool.QueryRow(ctx, `UPDATE fines SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+fineColumns, id, string(status), at)
	f, err := scanFine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update fine status: %w", err)
	}
	return f, nil
}

// MarkPaid pays the fine only if id, plate and UNPAID status all match, in a
// single statement. ErrFineNotFound means nothing was changed.
func (r *FineRepository) MarkPaid(ctx context.Context, id int64, plate string, at time.Time) (*domain.Fine, error) {
	row := r.pool.QueryRow(ctx, `UPDATE fines SET status = 'PAID', updated_at = $3
		WHERE id = $1 AND license_plate_number = $2 AND status = 'UNPAID'
		RETURNING `+fineColumns, id, plate, at)
	f, err := scanFine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pay fine: %w", err)
	}
	return f, nil
}

func (r *FineRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Fine, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query fines: %w", err)
	}
	defer rows.Close()

	fines := []*domain.Fine{}
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fine: %w", err)
		}
		fines = append(fines, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fines: %w", err)
	}
	return fines, nil
}

func scanFine(row pgx.Row) (*domain.Fine, error) {
	var (
		f      domain.Fine
		status string
	)
	err := row.Scan(&f.ID, &f.PlateNumber, &f.Amount, &f.ViolationType, &f.Description,
		&f.ViolationDate, &f.DueDate, &status, &f.IssuedByID, &f.IssuedByUsername, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Status = domain.FineStatus(status)
	return &f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
