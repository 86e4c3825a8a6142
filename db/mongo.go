package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"lingua-board/config"
	"lingua-board/logger"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database

	// initErr is cached alongside the handle: once construction fails, every
	// later Init call returns the same error instead of a nil client.
	initErr error
)

// Init initializes the global Mongo client and database using config values.
// The client is constructed at most once; both the handle and any
// construction error are cached for subsequent calls.
func Init(ctx context.Context) error {
	clientOnce.Do(func() {
		cfg := config.GetConfig()
		uri := cfg.MongoURI
		if uri == "" {
			initErr = fmt.Errorf("mongo: %s is not set", config.EnvMongoURI)
			return
		}
		dbName := cfg.MongoDBName
		if dbName == "" {
			dbName = "linguaboard"
		}

		cl, err := mongo.NewClient(options.Client().ApplyURI(uri))
		if err != nil {
			initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := cl.Connect(ctx); err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			initErr = err
			return
		}
		client = cl
		db = client.Database(dbName)

		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		logger.Log.Info("MongoDB connected and indexes ensured")
	})
	return initErr
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

// Ping checks connectivity for the health endpoint.
func Ping(ctx context.Context) error {
	if db == nil {
		return fmt.Errorf("mongo: not initialized")
	}
	return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// daily_quotes: index on day_bucket for bucket-wide delete and count
	mi := mongo.IndexModel{
		Keys:    bson.D{{Key: "day_bucket", Value: 1}},
		Options: options.Index().SetName("idx_day_bucket"),
	}
	if _, err := d.Collection("daily_quotes").Indexes().CreateOne(ctx, mi); err != nil {
		return err
	}
	return nil
}
