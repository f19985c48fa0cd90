package ports

import (
	"context"
	"time"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// CreateFineInput carries the data needed to issue a fine.
type CreateFineInput struct {
	PlateNumber    string
	Amount         float64
	ViolationType  string
	Description    string
	ViolationDate  time.Time // zero means now
	IssuerUsername string    // domain.SystemIssuer for system-issued fines
}

// FineService defines the fine lifecycle use cases.
type FineService interface {
	CreateFine(ctx context.Context, input CreateFineInput) (*domain.Fine, error)
	GetFinesByPlate(ctx context.Context, plate string) ([]*domain.Fine, error)
	GetUnpaidFinesByPlate(ctx context.Context, plate string) ([]*domain.Fine, error)
	GetAllFines(ctx context.Context) ([]*domain.Fine, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FineStatus, updatedBy string) (*domain.Fine, error)
	// PayFine reports whether an unpaid fine with the given id and plate was paid.
	PayFine(ctx context.Context, id int64, plate string) (bool, error)
	SearchByPlate(ctx context.Context, term string) ([]*domain.Fine, error)
	Stats(ctx context.Context) (*domain.FineStats, error)
}
