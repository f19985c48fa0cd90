package ports

import (
	"context"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

// Recognition is the answer of the external recognition service.
type Recognition struct {
	Success     bool
	PlateNumber string
	Confidence  float64
}

// PlateRecognizer is the client of the external ML service.
type PlateRecognizer interface {
	// Recognize returns an error for transport failures, timeouts, non-2xx
	// answers and undecodable bodies.
	Recognize(ctx context.Context, imageData string) (*Recognition, error)
	Healthy(ctx context.Context) bool
}

// DetectionRepository stores detection history.
type DetectionRepository interface {
	Insert(ctx context.Context, d *domain.Detection) error
	ListByUsername(ctx context.Context, username string, limit int64) ([]*domain.Detection, error)
}

// DetectInput carries a detection request.
type DetectInput struct {
	ImageData string
	Username  string
}

// DetectionService exposes plate detection. Detect never fails: when the ML
// service cannot answer, a fallback detection is returned instead.
type DetectionService interface {
	Detect(ctx context.Context, input DetectInput) *domain.Detection
	History(ctx context.Context, username string, limit int64) ([]*domain.Detection, error)
	RecognizerHealthy(ctx context.Context) bool
}
