package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB bundles the Mongo collections the service uses. Built once in main and
// passed into the handlers that need it.
type DB struct {
	Client           *mongo.Client
	EventsCollection *mongo.Collection
	StaffCollection  *mongo.Collection
}

// Connect opens the Mongo connection and pings it.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	opts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	database := client.Database(dbName)
	return &DB{
		Client:           client,
		EventsCollection: database.Collection("events"),
		StaffCollection:  database.Collection("staff"),
	}, nil
}

// EnsureIndexes creates the unique slug index. Slug uniqueness is the one
// duplicate guard for webhook re-delivery, so it must exist before the
// pipeline starts writing.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.EventsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
