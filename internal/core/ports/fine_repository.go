package ports

import (
	"context"
	"time"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// FineRepository defines persistence operations for fines.
// List methods return fines ordered by violation date, newest first, unless noted.
type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) (*domain.Fine, error)
	FindByID(ctx context.Context, id int64) (*domain.Fine, error)
	FindByPlate(ctx context.Context, plate string) ([]*domain.Fine, error)
	FindByPlateAndStatus(ctx context.Context, plate string, status domain.FineStatus) ([]*domain.Fine, error)
	// FindAll returns every fine. Callers must not rely on its order.
	FindAll(ctx context.Context) ([]*domain.Fine, error)
	// SearchByPlate matches term as a case-insensitive substring of the plate.
	SearchByPlate(ctx context.Context, term string) ([]*domain.Fine, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FineStatus, at time.Time) (*domain.Fine, error)
	// MarkPaid sets an UNPAID fine matching both id and plate to PAID in a
	// single conditional update. It returns domain.ErrFineNotFound when no
	// row matched, including when the fine is already paid.
	MarkPaid(ctx context.Context, id int64, plate string, at time.Time) (*domain.Fine, error)
}

// StatsCache holds the last computed fine statistics.
type StatsCache interface {
	Get(ctx context.Context) (*domain.FineStats, bool, error)
	Set(ctx context.Context, stats domain.FineStats) error
	Invalidate(ctx context.Context) error
}
