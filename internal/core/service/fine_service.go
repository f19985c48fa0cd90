package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/api/metrics"
	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

type FineService struct {
	fines  ports.FineRepository
	users  ports.UserRepository
	events ports.FineEventSink
	cache  ports.StatsCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewFineService wires the fine lifecycle. events and cache may be nil.
func NewFineService(
	fines ports.FineRepository,
	users ports.UserRepository,
	events ports.FineEventSink,
	cache ports.StatsCache,
	logger zerolog.Logger,
) *FineService {
	if events == nil {
		events = discardEvents{}
	}
	if cache == nil {
		cache = noStatsCache{}
	}
	return &FineService{
		fines:  fines,
		users:  users,
		events: events,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// CreateFine issues a new UNPAID fine due PaymentDays after the violation.
func (s *FineService) CreateFine(ctx context.Context, in ports.CreateFineInput) (*domain.Fine, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := s.now().UTC()
	violation := in.ViolationDate
	if violation.IsZero() {
		violation = now
	}

	fine := &domain.Fine{
		PlateNumber:      in.PlateNumber,
		Amount:           in.Amount,
		ViolationType:    in.ViolationType,
		Description:      in.Description,
		ViolationDate:    violation,
		DueDate:          domain.DueDate(violation),
		Status:           domain.FineUnpaid,
		IssuedByUsername: domain.SystemDisplayName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	issuer, err := s.resolveIssuer(ctx, in.IssuerUsername)
	if err != nil {
		return nil, err
	}
	if issuer != nil {
		fine.IssuedByID = &issuer.ID
		fine.IssuedByUsername = issuer.Username
	}

	created, err := s.fines.Create(ctx, fine)
	if err != nil {
		s.logger.Error().Err(err).Str("plate", in.PlateNumber).Msg("failed to create fine")
		return nil, err
	}

	issuerLabel := "authority"
	if created.IsSystemIssued() {
		issuerLabel = domain.SystemIssuer
	}
	metrics.FinesIssuedTotal.WithLabelValues(issuerLabel).Inc()
	s.invalidateStats(ctx)
	s.emit(domain.EventFineIssued, created, created.IssuedByUsername)

	s.logger.Info().
		Int64("fine_id", created.ID).
		Str("plate", created.PlateNumber).
		Str("issued_by", created.IssuedByUsername).
		Msg("fine issued")
	return created, nil
}

// resolveIssuer returns nil for system-issued fines and for unknown usernames.
func (s *FineService) resolveIssuer(ctx context.Context, username string) (*domain.User, error) {
	if username == "" || username == domain.SystemIssuer {
		return nil, nil
	}
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Warn().Str("issuer", username).Msg("issuer not found, fine recorded as system-issued")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve issuer: %w", err)
	}
	return user, nil
}

func (s *FineService) GetFinesByPlate(ctx context.Context, plate string) ([]*domain.Fine, error) {
	return s.fines.FindByPlate(ctx, plate)
}

func (s *FineService) GetUnpaidFinesByPlate(ctx context.Context, plate string) ([]*domain.Fine, error) {
	return s.fines.FindByPlateAndStatus(ctx, plate, domain.FineUnpaid)
}

func (s *FineService) GetAllFines(ctx context.Context) ([]*domain.Fine, error) {
	return s.fines.FindAll(ctx)
}

func (s *FineService) SearchByPlate(ctx context.Context, term string) ([]*domain.Fine, error) {
	return s.fines.SearchByPlate(ctx, strings.TrimSpace(term))
}

// UpdateStatus applies an authority status change. Setting the current
// status again is a no-op; reverting a paid fine is rejected.
func (s *FineService) UpdateStatus(ctx context.Context, id int64, status domain.FineStatus, updatedBy string) (*domain.Fine, error) {
	status, err := domain.ParseFineStatus(string(status))
	if err != nil {
		return nil, err
	}

	fine, err := s.fines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fine.Status == status {
		return fine, nil
	}
	if !fine.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("update fine %d: %w (from %s to %s)", id, domain.ErrInvalidTransition, fine.Status, status)
	}

	updated, err := s.fines.UpdateStatus(ctx, id, status, s.now().UTC())
	if err != nil {
		return nil, err
	}

	metrics.FineStatusChangesTotal.WithLabelValues(string(status)).Inc()
	s.invalidateStats(ctx)
	s.emit(domain.EventFineStatusChanged, updated, updatedBy)

	s.logger.Info().
		Int64("fine_id", id).
		Str("from", string(fine.Status)).
		Str("to", string(status)).
		Str("updated_by", updatedBy).
		Msg("fine status updated")
	return updated, nil
}

// PayFine pays an unpaid fine identified by both id and plate. It returns
// false, without mutating anything, when no unpaid fine matches.
func (s *FineService) PayFine(ctx context.Context, id int64, plate string) (bool, error) {
	paid, err := s.fines.MarkPaid(ctx, id, plate, s.now().UTC())
	if errors.Is(err, domain.ErrFineNotFound) {
		metrics.FinePaymentsTotal.WithLabelValues("rejected").Inc()
		s.logger.Info().Int64("fine_id", id).Str("plate", plate).Msg("payment rejected: no unpaid fine matches")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.FinePaymentsTotal.WithLabelValues("paid").Inc()
	s.invalidateStats(ctx)
	s.emit(domain.EventFinePaid, paid, plate)

	s.logger.Info().Int64("fine_id", id).Str("plate", plate).Msg("fine paid")
	return true, nil
}

// Stats counts fines by status over a full scan, served from cache when fresh.
func (s *FineService) Stats(ctx context.Context) (*domain.FineStats, error) {
	cached, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		metrics.StatsCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("stats cache read failed, computing")
	case ok:
		metrics.StatsCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.StatsCacheTotal.WithLabelValues("miss").Inc()
	}

	all, err := s.fines.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := domain.Count(all)

	if err := s.cache.Set(ctx, stats); err != nil {
		s.logger.Warn().Err(err).Msg("stats cache write failed")
	}
	return &stats, nil
}

func (s *FineService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("stats cache invalidation failed")
	}
}

func (s *FineService) emit(typ domain.FineEventType, f *domain.Fine, actor string) {
	s.events.Enqueue(domain.FineEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		FineID:      f.ID,
		PlateNumber: f.PlateNumber,
		Status:      f.Status,
		Amount:      f.Amount,
		Actor:       actor,
		OccurredAt:  f.UpdatedAt,
	})
}

type discardEvents struct{}

func (discardEvents) Enqueue(domain.FineEvent) {}

type noStatsCache struct{}

func (noStatsCache) Get(context.Context) (*domain.FineStats, bool, error) { return nil, false, nil }
func (noStatsCache) Set(context.Context, domain.FineStats) error          { return nil }
func (noStatsCache) Invalidate(context.Context) error                     { return nil }
