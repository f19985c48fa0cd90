package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

const collectionFineEvents = "fine_events"

var _ ports.FineEventRepository = (*FineEventRepository)(nil)

// FineEventRepository persists fine lifecycle events to the fine_events
// audit collection.
type FineEventRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewFineEventRepository(db *mongo.Database) *FineEventRepository {
	return &FineEventRepository{col: db.Collection(collectionFineEvents), now: time.Now}
}

// mongoFineEvent is the MongoDB document representation of a FineEvent.
type mongoFineEvent struct {
	EventID     string    `bson:"event_id"`
	Type        string    `bson:"type"`
	FineID      int64     `bson:"fine_id"`
	PlateNumber string    `bson:"license_plate_number"`
	Status      string    `bson:"status"`
	Amount      float64   `bson:"amount"`
	Actor       string    `bson:"actor"`
	OccurredAt  time.Time `bson:"occurred_at"`
	RecordedAt  time.Time `bson:"recorded_at"`
}

func toMongoFineEvent(e domain.FineEvent, recordedAt time.Time) mongoFineEvent {
	return mongoFineEvent{
		EventID:     e.ID,
		Type:        string(e.Type),
		FineID:      e.FineID,
		PlateNumber: e.PlateNumber,
		Status:      string(e.Status),
		Amount:      e.Amount,
		Actor:       e.Actor,
		OccurredAt:  e.OccurredAt.UTC(),
		RecordedAt:  recordedAt.UTC(),
	}
}

// Insert writes the audit document. Re-inserting an already recorded event
// is not an error.
func (r *FineEventRepository) Insert(ctx context.Context, event domain.FineEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toMongoFineEvent(event, r.now())); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert fine event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique event id index and the per-fine timeline index.
func (r *FineEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fine_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
