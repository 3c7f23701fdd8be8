package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	sessionsCollection    = "sessions"
	submissionsCollection = "submissions"
)

type Repository struct {
	// connection closer function
	Disconnect func()

	client *mongo.Client
	dbName string
	logger *zap.Logger
}

func NewConnection(logger *zap.Logger, uri, dbName string) (Repository, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("db connection failed", zap.String("uri", uri))
		return Repository{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return Repository{}, err
	}

	closer := func() {
		if err = client.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect the DB: " + err.Error())
		}
	}

	repo := Repository{
		Disconnect: closer,
		client:     client,
		dbName:     dbName,
		logger:     logger,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		closer()
		return Repository{}, err
	}

	return repo, nil
}

func (b Repository) collection(name string) *mongo.Collection {
	return b.client.Database(b.dbName).Collection(name)
}

func (b Repository) ensureIndexes(ctx context.Context) error {
	_, err := b.collection(sessionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	if err != nil {
		return errors.New("failed to create the sessions index: " + err.Error())
	}

	_, err = b.collection(submissionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sessionID", Value: 1}},
	})
	if err != nil {
		return errors.New("failed to create the submissions index: " + err.Error())
	}

	return nil
}
