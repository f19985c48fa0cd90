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

const collectionDetections = "detection_history"

var _ ports.DetectionRepository = (*DetectionRepository)(nil)

type DetectionRepository struct {
	col *mongo.Collection
}

func NewDetectionRepository(db *mongo.Database) *DetectionRepository {
	return &DetectionRepository{col: db.Collection(collectionDetections)}
}

type mongoDetection struct {
	ID          string    `bson:"_id"`
	PlateNumber string    `bson:"license_plate_number"`
	Confidence  float64   `bson:"confidence"`
	Mode        string    `bson:"mode"`
	Message     string    `bson:"message"`
	ImageDigest string    `bson:"image_digest"`
	ImageBytes  int       `bson:"image_bytes"`
	Username    string    `bson:"username"`
	DetectedAt  time.Time `bson:"detected_at"`
}

func toMongoDetection(d *domain.Detection) mongoDetection {
	return mongoDetection{
		ID:          d.ID,
		PlateNumber: d.PlateNumber,
		Confidence:  d.Confidence,
		Mode:        string(d.Mode),
		Message:     d.Message,
		ImageDigest: d.ImageDigest,
		ImageBytes:  d.ImageBytes,
		Username:    d.Username,
		DetectedAt:  d.DetectedAt.UTC(),
	}
}

func (m mongoDetection) toDomain() *domain.Detection {
	return &domain.Detection{
		ID:          m.ID,
		PlateNumber: m.PlateNumber,
		Confidence:  m.Confidence,
		Mode:        domain.DetectionMode(m.Mode),
		Message:     m.Message,
		ImageDigest: m.ImageDigest,
		ImageBytes:  m.ImageBytes,
		Username:    m.Username,
		DetectedAt:  m.DetectedAt.UTC(),
	}
}

// Insert records a single detection.
func (r *DetectionRepository) Insert(ctx context.Context, d *domain.Detection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toMongoDetection(d)); err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// ListByUsername returns up to limit detections of username, newest first.
func (r *DetectionRepository) ListByUsername(ctx context.Context, username string, limit int64) ([]*domain.Detection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "detected_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find detections: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoDetection
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}

	out := make([]*domain.Detection, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the history lookup index.
func (r *DetectionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "detected_at", Value: -1}},
	})
	return err
}
