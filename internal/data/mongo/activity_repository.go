package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rental-marketplace-core/internal/domain/activity"
)

const (
	// ActivityCollectionName is the name of the activity collection in MongoDB
	ActivityCollectionName = "booking_activity"
)

// ActivityRepository implements the activity.Repository interface for MongoDB
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a new MongoDB activity repository
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique event index that makes projection idempotent,
// plus the lookup indexes for the two feeds.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_id"),
		},
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}, {Key: "occurred_at", Value: 1}},
			Options: options.Index().SetName("booking_timeline"),
		},
		{
			Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("participant_feed"),
		},
	}

	if _, err := r.db.Collection(ActivityCollectionName).Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Error("Failed to create activity indexes", "error", err)
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}

// Insert stores a projected entry.
// Returns ErrDuplicateEntry if the event was already projected.
func (r *ActivityRepository) Insert(ctx context.Context, entry *activity.Entry) error {
	_, err := r.db.Collection(ActivityCollectionName).InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return activity.ErrDuplicateEntry{EventID: entry.EventID}
		}
		r.logger.Error("Failed to insert activity entry",
			"event_id", entry.EventID,
			"event_type", string(entry.EventType),
			"error", err)
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}

	return nil
}

// ListByBooking returns the booking's activity oldest first
func (r *ActivityRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID, limit, offset int) ([]*activity.Entry, error) {
	filter := bson.M{"booking_id": bookingID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.find(ctx, filter, opts, "booking_id", bookingID)
}

// ListByParticipant returns the user's activity feed newest first
func (r *ActivityRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*activity.Entry, error) {
	filter := bson.M{"participants": userID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.find(ctx, filter, opts, "user_id", userID)
}

// CountByParticipant counts the entries in the user's feed
func (r *ActivityRepository) CountByParticipant(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := r.db.Collection(ActivityCollectionName).CountDocuments(ctx, bson.M{"participants": userID.String()})
	if err != nil {
		r.logger.Error("Failed to count activity entries",
			"user_id", userID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count activity entries: %w", err)
	}

	return count, nil
}

func (r *ActivityRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions, key string, id uuid.UUID) ([]*activity.Entry, error) {
	cursor, err := r.db.Collection(ActivityCollectionName).Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get activity entries", key, id.String(), "error", err)
		return nil, fmt.Errorf("failed to get activity entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*activity.Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode activity entries", key, id.String(), "error", err)
		return nil, fmt.Errorf("failed to decode activity entries: %w", err)
	}

	return entries, nil
}
