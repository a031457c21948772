package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoDatabase and DefaultMongoCollection are used when the URL
// names no database.
const (
	DefaultMongoDatabase   = "photonkit"
	DefaultMongoCollection = "references"
)

// MongoStore keeps values as documents {_id, data, expires_at}.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

// NewMongoStore connects to rawURL ("mongodb://host:27017/db").
func NewMongoStore(ctx context.Context, rawURL string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(rawURL))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabase(rawURL)).Collection(DefaultMongoCollection),
	}, nil
}

// mongoDatabase extracts the database path segment of a connection URL.
func mongoDatabase(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return DefaultMongoDatabase
	}
	db, _, _ := strings.Cut(rest[i+1:], "?")
	if db == "" {
		return DefaultMongoDatabase
	}
	return db
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !doc.ExpiresAt.IsZero() && time.Now().After(doc.ExpiresAt) {
		_, _ = s.coll.DeleteOne(ctx, bson.M{"_id": key})
		return nil, false, nil
	}
	return doc.Data, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	doc := mongoDoc{Key: key, Data: data}
	if ttl > 0 {
		doc.ExpiresAt = time.Now().Add(ttl).UTC()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
