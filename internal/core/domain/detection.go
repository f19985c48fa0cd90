package domain

import "time"

// DetectionMode tells whether a plate came from the ML service or from the
// fallback generator.
type DetectionMode string

const (
	DetectionML       DetectionMode = "ml"
	DetectionFallback DetectionMode = "fallback"
)

// Detection is a single plate detection attempt as kept in history.
type Detection struct {
	ID          string        `json:"id"`
	PlateNumber string        `json:"license_plate_number"`
	Confidence  float64       `json:"confidence"`
	Mode        DetectionMode `json:"mode"`
	Message     string        `json:"message"`
	ImageDigest string        `json:"image_digest"`
	ImageBytes  int           `json:"image_bytes"`
	Username    string        `json:"username"`
	DetectedAt  time.Time     `json:"detected_at"`
}
