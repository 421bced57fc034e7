package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IOCCursor interface for mocking
type IOCCursor interface {
	All(ctx context.Context, results interface{}) error
	Close(ctx context.Context) error
}

// IOCSingleResult interface for mocking
type IOCSingleResult interface {
	Decode(v interface{}) error
	Err() error
}

// IOCCollection is the subset of *mongo.Collection used by MongoIOCStorage
type IOCCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (IOCCursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) IOCSingleResult
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) IOCSingleResult
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (IOCCursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	CreateIndexes(ctx context.Context, models []mongo.IndexModel) ([]string, error)
}

// mongoIOCCollection adapts *mongo.Collection to IOCCollection
type mongoIOCCollection struct {
	*mongo.Collection
}

func (m *mongoIOCCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (IOCCursor, error) {
	cursor, err := m.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

func (m *mongoIOCCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) IOCSingleResult {
	return m.Collection.FindOne(ctx, filter, opts...)
}

func (m *mongoIOCCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) IOCSingleResult {
	return m.Collection.FindOneAndUpdate(ctx, filter, update, opts...)
}

func (m *mongoIOCCollection) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (IOCCursor, error) {
	cursor, err := m.Collection.Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

func (m *mongoIOCCollection) CreateIndexes(ctx context.Context, models []mongo.IndexModel) ([]string, error) {
	return m.Collection.Indexes().CreateMany(ctx, models)
}

// MongoDB holds the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB creates a new MongoDB connection
func NewMongoDB(ctx context.Context, uri, dbName string, maxPoolSize uint64, timeout time.Duration, logger *zap.SugaredLogger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetMaxPoolSize(maxPoolSize)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infow("Connected to MongoDB successfully", "database", dbName)

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Collection returns a mockable handle on a collection of the database
func (m *MongoDB) Collection(name string) IOCCollection {
	return &mongoIOCCollection{Collection: m.Database.Collection(name)}
}

// HealthCheck performs a health check on the MongoDB connection
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
