package domain

import "time"

// FineEventType identifies a fine lifecycle event.
type FineEventType string

const (
	EventFineIssued        FineEventType = "fine.issued"
	EventFinePaid          FineEventType = "fine.paid"
	EventFineStatusChanged FineEventType = "fine.status_changed"
)

// FineEvent records a change to a fine. It is written to the audit trail and
// published to the message broker.
type FineEvent struct {
	ID          string        `json:"id"`
	Type        FineEventType `json:"type"`
	FineID      int64         `json:"fine_id"`
	PlateNumber string        `json:"license_plate_number"`
	Status      FineStatus    `json:"status"`
	Amount      float64       `json:"amount"`
	Actor       string        `json:"actor"`
	OccurredAt  time.Time     `json:"occurred_at"`
}
