package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/api/metrics"
	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

const (
	MsgDetectedByModel = "License plate detected using ML model"
	MsgNoResults       = "ML service returned no results, using mock data"
	MsgUnavailable     = "ML service unavailable, using mock data"

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	fallbackMinConfidence = 0.85
	fallbackSpread        = 0.15
)

// FallbackPlates is the pool fallback detections are drawn from.
var FallbackPlates = []string{"ABC123", "XYZ789", "DEF456", "GHI789", "JKL012"}

// Random is the randomness source used for fallback detections.
// *math/rand/v2.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// globalRandom uses the concurrency-safe top-level math/rand/v2 source.
type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

type DetectionService struct {
	recognizer ports.PlateRecognizer
	history    ports.DetectionRepository
	rnd        Random
	log        zerolog.Logger
	now        func() time.Time
}

// NewDetectionService builds the detection delegate. history and rnd may be
// nil; rnd then defaults to the shared math/rand/v2 source.
func NewDetectionService(
	recognizer ports.PlateRecognizer,
	history ports.DetectionRepository,
	rnd Random,
	log zerolog.Logger,
) *DetectionService {
	if rnd == nil {
		rnd = globalRandom{}
	}
	return &DetectionService{
		recognizer: recognizer,
		history:    history,
		rnd:        rnd,
		log:        log,
		now:        time.Now,
	}
}

// Detect asks the recognition service for a plate and substitutes a random
// plausible plate when it cannot answer. It always yields a detection.
func (s *DetectionService) Detect(ctx context.Context, in ports.DetectInput) *domain.Detection {
	username := in.Username
	if username == "" {
		username = domain.SystemDisplayName
	}

	sum := sha256.Sum256([]byte(in.ImageData))
	d := &domain.Detection{
		ID:          uuid.NewString(),
		ImageDigest: hex.EncodeToString(sum[:]),
		ImageBytes:  len(in.ImageData),
		Username:    username,
		DetectedAt:  s.now().UTC(),
	}

	s.recognize(ctx, in.ImageData, username).apply(d)

	if s.history != nil {
		if err := s.history.Insert(ctx, d); err != nil {
			s.log.Warn().Err(err).Str("detection_id", d.ID).Msg("failed to record detection")
		}
	}

	s.log.Info().
		Str("plate", d.PlateNumber).
		Str("mode", string(d.Mode)).
		Float64("confidence", d.Confidence).
		Str("username", username).
		Msg("plate detected")
	return d
}

// outcome is the result of one recognition attempt: either a modelOutcome
// or a fallbackOutcome. Both become a successful detection.
type outcome interface {
	apply(d *domain.Detection)
}

type modelOutcome struct {
	plate      string
	confidence float64
}

func (o modelOutcome) apply(d *domain.Detection) {
	d.PlateNumber = o.plate
	d.Confidence = o.confidence
	d.Mode = domain.DetectionML
	d.Message = MsgDetectedByModel
}

type fallbackOutcome struct {
	plate      string
	confidence float64
	message    string
}

func (o fallbackOutcome) apply(d *domain.Detection) {
	d.PlateNumber = o.plate
	d.Confidence = o.confidence
	d.Mode = domain.DetectionFallback
	d.Message = o.message
}

func (s *DetectionService) recognize(ctx context.Context, imageData, username string) outcome {
	start := time.Now()
	rec, err := s.recognizer.Recognize(ctx, imageData)
	metrics.MLRequestDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("username", username).Msg("recognition service unavailable, using fallback")
		metrics.DetectionsTotal.WithLabelValues(string(domain.DetectionFallback), "unavailable").Inc()
		return s.fallback(MsgUnavailable)
	case !rec.Success || rec.PlateNumber == "":
		metrics.DetectionsTotal.WithLabelValues(string(domain.DetectionFallback), "no_result").Inc()
		return s.fallback(MsgNoResults)
	default:
		metrics.DetectionsTotal.WithLabelValues(string(domain.DetectionML), "recognized").Inc()
		return modelOutcome{plate: rec.PlateNumber, confidence: rec.Confidence}
	}
}

func (s *DetectionService) fallback(msg string) fallbackOutcome {
	return fallbackOutcome{
		plate:      FallbackPlates[s.rnd.IntN(len(FallbackPlates))],
		confidence: fallbackMinConfidence + s.rnd.Float64()*fallbackSpread,
		message:    msg,
	}
}

// History returns the caller's most recent detections, newest first.
func (s *DetectionService) History(ctx context.Context, username string, limit int64) ([]*domain.Detection, error) {
	if s.history == nil {
		return []*domain.Detection{}, nil
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.history.ListByUsername(ctx, username, limit)
}

func (s *DetectionService) RecognizerHealthy(ctx context.Context) bool {
	return s.recognizer.Healthy(ctx)
}
