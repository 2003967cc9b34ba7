package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nao1215/trendscan/internal/model"
)

// MongoDB location of the results.
const (
	MongoDatabase   = "twitter_trends"
	MongoCollection = "trends"
)

// MongoStore is a RecordStore backed by MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and verifies the server is reachable.
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageErr("connect to mongodb", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, storageErr("connect to mongodb", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(MongoDatabase).Collection(MongoCollection),
	}, nil
}

// Close implements RecordStore.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Insert implements RecordStore.
func (s *MongoStore) Insert(ctx context.Context, r *model.ScrapeResult) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return storageErr("insert result", err)
	}
	return nil
}

var newestFirst = bson.D{{Key: "timestamp", Value: -1}}

// Latest implements RecordStore.
func (s *MongoStore) Latest(ctx context.Context) (*model.ScrapeResult, error) {
	var r model.ScrapeResult
	err := s.coll.FindOne(ctx, bson.D{}, options.FindOne().SetSort(newestFirst)).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("read latest result", err)
	}
	return &r, nil
}

// History implements RecordStore.
func (s *MongoStore) History(ctx context.Context, limit int) ([]*model.ScrapeResult, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(clampLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storageErr("query history", err)
	}
	var out []*model.ScrapeResult
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr("decode history", err)
	}
	return out, nil
}
