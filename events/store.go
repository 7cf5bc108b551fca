package events

import (
	"context"
	"errors"
	"time"

	"erfworld/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEvent means the slug already exists, i.e. the source post was
// imported before. Webhook re-delivery lands here and is treated as a no-op.
var ErrDuplicateEvent = errors.New("event already exists")

// SlugForInstagram derives the deterministic slug for an imported post. Same
// media id, same slug, every time; this plus the unique index is the whole
// duplicate guard.
func SlugForInstagram(mediaID string) string {
	return "instagram-" + mediaID
}

// Store wraps the events collection.
type Store struct {
	Coll *mongo.Collection
}

func NewStore(coll *mongo.Collection) *Store {
	return &Store{Coll: coll}
}

func (s *Store) Create(ctx context.Context, event *models.Event) error {
	_, err := s.Coll.InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEvent
	}
	return err
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var event models.Event
	if err := s.Coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := s.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListFilter narrows the calendar query.
type ListFilter struct {
	Year     int
	Month    time.Month
	Location string
}

func (s *Store) List(ctx context.Context, filter ListFilter, skip, limit int64) ([]models.Event, int64, error) {
	query := bson.M{}
	if filter.Year != 0 && filter.Month != 0 {
		start := time.Date(filter.Year, filter.Month, 1, 0, 0, 0, 0, time.UTC)
		query["date"] = bson.M{"$gte": start, "$lt": start.AddDate(0, 1, 0)}
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}

	total, err := s.Coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.Coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var results []models.Event
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (s *Store) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := s.Coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
