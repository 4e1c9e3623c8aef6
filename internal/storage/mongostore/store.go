// Package mongostore implements storage.Store on MongoDB.
//
// Documents are (de)serialised through the bson tags on the models; ids are
// UUID strings stored in _id. Collections and indexes are declared in
// ensureIndexes.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hostelfix/backend/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	ColUsers      = "users"
	ColComplaints = "complaints"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects, pings and makes sure the indexes exist.
//
// uri: e.g. "mongodb://localhost:27017"
// dbName: e.g. "hostel_maintenance"
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}

	if err := s.ensureIndexes(ctx); err != nil {
		slog.Warn("mongostore: ensure indexes failed", "error", err)
	}

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		// users
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "hostelCode", Value: 1}}, false},
		{ColUsers, bson.D{{Key: "hostelCode", Value: 1}, {Key: "role", Value: 1}}, false},

		// complaints
		{ColComplaints, bson.D{{Key: "userId", Value: 1}}, false},
		{ColComplaints, bson.D{{Key: "status", Value: 1}}, false},
		{ColComplaints, bson.D{{Key: "category", Value: 1}}, false},
		{ColComplaints, bson.D{{Key: "createdAt", Value: -1}}, false},
		{ColComplaints, bson.D{{Key: "hostelCode", Value: 1}}, false},
		{ColComplaints, bson.D{{Key: "hostelCode", Value: 1}, {Key: "status", Value: 1}}, false},
	}

	for _, ix := range indexes {
		model := mongo.IndexModel{Keys: ix.keys}
		if ix.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(ix.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.col, err)
		}
	}
	return nil
}
