package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news_mapper/internal/config"
	"news_mapper/internal/models"
)

// MongoStore persists tagged articles. Connection failure at startup
// is fatal; write failures mid-run are surfaced to the caller per item
// and not retried here.
type MongoStore struct {
	client   *mongo.Client
	articles *mongo.Collection
}

func NewMongoStore(cfg config.DBConfig) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	s := &MongoStore{
		client:   client,
		articles: client.Database(cfg.Database).Collection(cfg.Collection),
	}

	if err := s.createIndexes(); err != nil {
		return nil, fmt.Errorf("can't create indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
	})
	return err
}

// InsertArticle persists one tagged article. The raw content field is
// excluded from the record; every other field is kept.
func (s *MongoStore) InsertArticle(ctx context.Context, art *models.TaggedArticle) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.articles.InsertOne(opCtx, art); err != nil {
		return fmt.Errorf("insert article %s: %w", art.NormalizedURL, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
