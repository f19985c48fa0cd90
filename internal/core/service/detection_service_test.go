package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

type stubRecognizer struct {
	rec     *ports.Recognition
	err     error
	healthy bool
	calls   int
}

func (r *stubRecognizer) Recognize(context.Context, string) (*ports.Recognition, error) {
	r.calls++
	return r.rec, r.err
}

func (r *stubRecognizer) Healthy(context.Context) bool { return r.healthy }

type stubDetectionRepo struct {
	insertErr error
	stored    []*domain.Detection
	lastLimit int64
}

func (r *stubDetectionRepo) Insert(_ context.Context, d *domain.Detection) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.stored = append(r.stored, d)
	return nil
}

func (r *stubDetectionRepo) ListByUsername(_ context.Context, username string, limit int64) ([]*domain.Detection, error) {
	r.lastLimit = limit
	out := []*domain.Detection{}
	for i := len(r.stored) - 1; i >= 0; i-- {
		if r.stored[i].Username == username {
			out = append(out, r.stored[i])
		}
	}
	return out, nil
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func newDetectionSvc(rec *stubRecognizer, repo ports.DetectionRepository) *DetectionService {
	return NewDetectionService(rec, repo, seeded(), zerolog.Nop())
}

func TestDetectionService_Detect_ModelResult(t *testing.T) {
	rec := &stubRecognizer{rec: &ports.Recognition{Success: true, PlateNumber: "MH12AB1234", Confidence: 0.93}}
	repo := &stubDetectionRepo{}

	d := newDetectionSvc(rec, repo).Detect(context.Background(), ports.DetectInput{ImageData: "aGVsbG8=", Username: "citizen1"})

	if d.PlateNumber != "MH12AB1234" || d.Confidence != 0.93 {
		t.Errorf("unexpected plate/confidence: %q %v", d.PlateNumber, d.Confidence)
	}
	if d.Mode != domain.DetectionML || d.Message != MsgDetectedByModel {
		t.Errorf("unexpected mode/message: %q %q", d.Mode, d.Message)
	}
	if d.ImageBytes != 8 || len(d.ImageDigest) != 64 {
		t.Errorf("unexpected image bytes/digest: %d %q", d.ImageBytes, d.ImageDigest)
	}
	if rec.calls != 1 {
		t.Errorf("expected a single recognition call, got %d", rec.calls)
	}
	if len(repo.stored) != 1 || repo.stored[0].Username != "citizen1" {
		t.Fatalf("expected one history entry for citizen1, got %+v", repo.stored)
	}
}

func TestDetectionService_Detect_FallbackMessages(t *testing.T) {
	cases := []struct {
		name string
		rec  *stubRecognizer
		msg  string
	}{
		{"unsuccessful", &stubRecognizer{rec: &ports.Recognition{Success: false}}, MsgNoResults},
		{"success without plate", &stubRecognizer{rec: &ports.Recognition{Success: true}}, MsgNoResults},
		{"unreachable", &stubRecognizer{err: errors.New("connection refused")}, MsgUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDetectionSvc(tc.rec, &stubDetectionRepo{}).Detect(context.Background(), ports.DetectInput{ImageData: "x"})

			if d.Message != tc.msg || d.Mode != domain.DetectionFallback {
				t.Errorf("unexpected message/mode: %q %q", d.Message, d.Mode)
			}
			if !slices.Contains(FallbackPlates, d.PlateNumber) {
				t.Errorf("plate %q not in fallback pool", d.PlateNumber)
			}
			if d.Confidence < 0.85 || d.Confidence >= 1.0 {
				t.Errorf("confidence %v outside [0.85, 1.0)", d.Confidence)
			}
		})
	}
}

func TestDetectionService_Detect_FallbackDeterministicUnderSeed(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("timeout")}

	a := newDetectionSvc(rec, nil).Detect(context.Background(), ports.DetectInput{ImageData: "x"})
	b := newDetectionSvc(rec, nil).Detect(context.Background(), ports.DetectInput{ImageData: "x"})

	if a.PlateNumber != b.PlateNumber || a.Confidence != b.Confidence {
		t.Fatalf("same seed must yield the same fallback: %q/%v vs %q/%v", a.PlateNumber, a.Confidence, b.PlateNumber, b.Confidence)
	}
}

func TestDetectionService_Detect_AnonymousIsSystem(t *testing.T) {
	repo := &stubDetectionRepo{}
	rec := &stubRecognizer{rec: &ports.Recognition{Success: true, PlateNumber: "ABC123", Confidence: 0.9}}

	d := newDetectionSvc(rec, repo).Detect(context.Background(), ports.DetectInput{ImageData: "x"})

	if d.Username != domain.SystemDisplayName {
		t.Fatalf("expected %q, got %q", domain.SystemDisplayName, d.Username)
	}
}

func TestDetectionService_Detect_HistoryFailureIsNonFatal(t *testing.T) {
	rec := &stubRecognizer{rec: &ports.Recognition{Success: true, PlateNumber: "ABC123", Confidence: 0.9}}
	repo := &stubDetectionRepo{insertErr: errors.New("mongo down")}

	d := newDetectionSvc(rec, repo).Detect(context.Background(), ports.DetectInput{ImageData: "x", Username: "u"})

	if d == nil || d.PlateNumber != "ABC123" {
		t.Fatalf("expected detection despite history failure, got %+v", d)
	}
}

func TestDetectionService_History_Limits(t *testing.T) {
	repo := &stubDetectionRepo{}
	svc := newDetectionSvc(&stubRecognizer{err: errors.New("down")}, repo)
	svc.Detect(context.Background(), ports.DetectInput{ImageData: "a", Username: "u1"})
	svc.Detect(context.Background(), ports.DetectInput{ImageData: "b", Username: "u2"})
	second := svc.Detect(context.Background(), ports.DetectInput{ImageData: "c", Username: "u1"})

	got, err := svc.History(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if repo.lastLimit != DefaultHistoryLimit {
		t.Errorf("expected default limit %d, got %d", DefaultHistoryLimit, repo.lastLimit)
	}
	if len(got) != 2 || got[0].ID != second.ID {
		t.Fatalf("expected two entries, newest first, got %+v", got)
	}

	_, _ = svc.History(context.Background(), "u1", 10_000)
	if repo.lastLimit != MaxHistoryLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxHistoryLimit, repo.lastLimit)
	}

	_, _ = svc.History(context.Background(), "u1", 5)
	if repo.lastLimit != 5 {
		t.Errorf("expected limit 5, got %d", repo.lastLimit)
	}
}

func TestDetectionService_RecognizerHealthy(t *testing.T) {
	if !newDetectionSvc(&stubRecognizer{healthy: true}, nil).RecognizerHealthy(context.Background()) {
		t.Error("expected healthy recognizer")
	}
	if newDetectionSvc(&stubRecognizer{}, nil).RecognizerHealthy(context.Background()) {
		t.Error("expected unhealthy recognizer")
	}
}
