package mongo

import (
	"testing"
	"time"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
)

func TestMongoDetection_RoundTrip(t *testing.T) {
	in := &domain.Detection{
		ID:          "d-1",
		PlateNumber: "ABC123",
		Confidence:  0.91,
		Mode:        domain.DetectionFallback,
		Message:     "ML service unavailable, using mock data",
		ImageDigest: "abcd",
		ImageBytes:  12,
		Username:    "citizen1",
		DetectedAt:  time.Date(2026, 4, 2, 10, 0, 0, 0, time.FixedZone("IST", 19800)),
	}

	out := toMongoDetection(in).toDomain()

	if out.DetectedAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamps, got %v", out.DetectedAt.Location())
	}
	if !out.DetectedAt.Equal(in.DetectedAt) {
		t.Errorf("instant changed: %v vs %v", out.DetectedAt, in.DetectedAt)
	}
	out.DetectedAt = in.DetectedAt
	if *out != *in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}
