package domain

import (
	"errors"
	"strings"
	"time"
)

// FineStatus represents the payment state of a fine.
type FineStatus string

const (
	FineUnpaid FineStatus = "UNPAID"
	FinePaid   FineStatus = "PAID"
)

const (
	// SystemIssuer is the issuer username that marks a fine as system-issued.
	SystemIssuer = "system"
	// SystemDisplayName is stored as issuer username when there is no issuer.
	SystemDisplayName = "System"
	// PaymentDays is the number of days between violation and due date.
	PaymentDays = 30
)

var (
	ErrFineNotFound      = errors.New("fine not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid fine status")
	ErrInvalidAmount     = errors.New("fine amount must be greater than zero")
)

// validTransitions lists the status changes an authority may apply.
// Reverting a paid fine is not allowed.
var validTransitions = map[FineStatus][]FineStatus{
	FineUnpaid: {FinePaid},
}

// ParseFineStatus converts a client-supplied status into a FineStatus.
func ParseFineStatus(s string) (FineStatus, error) {
	switch st := FineStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case FineUnpaid, FinePaid:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s FineStatus) CanTransitionTo(next FineStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DueDate returns the payment deadline for a violation at t.
func DueDate(violation time.Time) time.Time {
	return violation.AddDate(0, 0, PaymentDays)
}

// Fine is a monetary penalty tied to a plate.
type Fine struct {
	ID               int64      `json:"id"`
	PlateNumber      string     `json:"license_plate_number"`
	Amount           float64    `json:"amount"`
	ViolationType    string     `json:"violation_type"`
	Description      string     `json:"description"`
	ViolationDate    time.Time  `json:"violation_date"`
	DueDate          time.Time  `json:"due_date"`
	Status           FineStatus `json:"status"`
	IssuedByID       *int64     `json:"-"`
	IssuedByUsername string     `json:"issued_by_username"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsSystemIssued reports whether the fine has no issuing user.
func (f *Fine) IsSystemIssued() bool {
	return f.IssuedByID == nil
}

// FineStats summarises the fine table.
type FineStats struct {
	Total  int64 `json:"total_fines"`
	Unpaid int64 `json:"unpaid_fines"`
	Paid   int64 `json:"paid_fines"`
}

// Count tallies fines by status.
func Count(fines []*Fine) FineStats {
	stats := FineStats{Total: int64(len(fines))}
	for _, f := range fines {
		switch f.Status {
		case FineUnpaid:
			stats.Unpaid++
		case FinePaid:
			stats.Paid++
		}
	}
	return stats
}
