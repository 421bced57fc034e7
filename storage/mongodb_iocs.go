package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"threatshare/core"
	"threatshare/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IOCCollectionName is the default MongoDB collection holding IOC records
const IOCCollectionName = "iocs"

// MongoIOCStorage implements IOCStorage on MongoDB
type MongoIOCStorage struct {
	coll    IOCCollection
	health  func(ctx context.Context) error
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// NewMongoIOCStorage creates IOC storage on a collection of the given
// database. An empty collection name selects IOCCollectionName.
func NewMongoIOCStorage(db *MongoDB, collection string, timeout time.Duration, logger *zap.SugaredLogger) *MongoIOCStorage {
	if collection == "" {
		collection = IOCCollectionName
	}
	s := NewMongoIOCStorageWithCollection(db.Collection(collection), timeout, logger)
	s.health = db.HealthCheck
	return s
}

// NewMongoIOCStorageWithCollection creates IOC storage on an arbitrary collection handle
func NewMongoIOCStorageWithCollection(coll IOCCollection, timeout time.Duration, logger *zap.SugaredLogger) *MongoIOCStorage {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoIOCStorage{coll: coll, timeout: timeout, logger: logger}
}

// EnsureIndexes creates the indexes search relies on. The unique
// (type, value) index backs ErrDuplicateIOC.
func (s *MongoIOCStorage) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "value", Value: 1}}, Options: options.Index().SetUnique(true).SetName("type_value_unique")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
		{Keys: bson.D{{Key: search.ThreatLevelOrderField, Value: -1}}},
		{Keys: bson.D{{Key: "confidence", Value: -1}}},
		{Keys: bson.D{{Key: "verificationCount", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "threatLevel", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	names, err := s.coll.CreateIndexes(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to create IOC indexes: %w", err)
	}
	s.logger.Infow("IOC indexes ensured", "indexes", names)
	return nil
}

// FindIOCs returns one page of records matching pred
func (s *MongoIOCStorage) FindIOCs(ctx context.Context, pred search.Predicate, sort search.SortSpec, skip, limit int64) ([]*core.IOC, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if skip < 0 {
		skip = 0
	}
	opts := options.Find().SetSort(sort.BSON()).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, pred.BSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find IOCs: %w", err)
	}
	defer cursor.Close(ctx)

	iocs := []*core.IOC{}
	if err := cursor.All(ctx, &iocs); err != nil {
		return nil, fmt.Errorf("failed to decode IOCs: %w", err)
	}
	return iocs, nil
}

// CountIOCs counts the records matching pred
func (s *MongoIOCStorage) CountIOCs(ctx context.Context, pred search.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.coll.CountDocuments(ctx, pred.BSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count IOCs: %w", err)
	}
	return count, nil
}

// CreateIOC stores a new IOC
func (s *MongoIOCStorage) CreateIOC(ctx context.Context, ioc *core.IOC) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := ioc.Validate(); err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, ioc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateIOC
		}
		return fmt.Errorf("failed to create IOC: %w", err)
	}

	s.logger.Infow("IOC created",
		"ioc_id", ioc.ID,
		"type", ioc.Type,
		"status", ioc.Status,
		"anonymous", ioc.IsAnonymous,
	)
	return nil
}

// GetIOC retrieves an IOC by ID
func (s *MongoIOCStorage) GetIOC(ctx context.Context, id string) (*core.IOC, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ioc core.IOC
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ioc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get IOC: %w", err)
	}
	return &ioc, nil
}

// UpdateIOCStatus sets the lifecycle status of an IOC
func (s *MongoIOCStorage) UpdateIOCStatus(ctx context.Context, id string, status core.IOCStatus) error {
	if !status.IsValid() {
		return core.NewValidationError("status", "unknown IOC status %q", status)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update IOC status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementVerification adds one verification to an IOC and returns the updated record
func (s *MongoIOCStorage) IncrementVerification(ctx context.Context, id string) (*core.IOC, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"verificationCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ioc core.IOC
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&ioc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify IOC: %w", err)
	}
	return &ioc, nil
}

// PopularTags returns the most used tags, most frequent first
func (s *MongoIOCStorage) PopularTags(ctx context.Context, limit int) ([]TagCount, error) {
	if limit <= 0 {
		limit = PopularTagsLimit
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$tags"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	tags := []TagCount{}
	if err := s.aggregate(ctx, pipeline, &tags); err != nil {
		return nil, fmt.Errorf("failed to aggregate tags: %w", err)
	}
	return tags, nil
}

// DashboardStats summarizes the collection for the analytics dashboard
func (s *MongoIOCStorage) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*s.timeout)
	defer cancel()

	stats := &DashboardStats{}

	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to count IOCs: %w", err)
	}
	stats.TotalIOCs = total

	stats.IOCsByType = []GroupCount{}
	if err := s.aggregate(ctx, groupByPipeline("$type"), &stats.IOCsByType); err != nil {
		return nil, fmt.Errorf("failed to group IOCs by type: %w", err)
	}

	stats.IOCsByThreatLevel = []GroupCount{}
	if err := s.aggregate(ctx, groupByPipeline("$threatLevel"), &stats.IOCsByThreatLevel); err != nil {
		return nil, fmt.Errorf("failed to group IOCs by threat level: %w", err)
	}

	recentOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(DashboardRecentLimit).
		SetProjection(bson.M{"_id": 1, "type": 1, "value": 1, "threatLevel": 1, "createdAt": 1})
	cursor, err := s.coll.Find(ctx, bson.D{}, recentOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent IOCs: %w", err)
	}
	defer cursor.Close(ctx)
	stats.RecentSubmissions = []RecentSubmission{}
	if err := cursor.All(ctx, &stats.RecentSubmissions); err != nil {
		return nil, fmt.Errorf("failed to decode recent IOCs: %w", err)
	}

	// Newest days first so the limit keeps the latest window, then flipped to ascending
	daily := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$createdAt"}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: "$createdAt"}}},
				{Key: "day", Value: bson.D{{Key: "$dayOfMonth", Value: "$createdAt"}}},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.month", Value: -1}, {Key: "_id.day", Value: -1}}}},
		{{Key: "$limit", Value: DashboardDaysLimit}},
	}
	stats.SubmissionsOverTime = []DailyCount{}
	if err := s.aggregate(ctx, daily, &stats.SubmissionsOverTime); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily submissions: %w", err)
	}
	reverseDaily(stats.SubmissionsOverTime)

	return stats, nil
}

// HealthCheck pings the database
func (s *MongoIOCStorage) HealthCheck(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health(ctx)
}

func (s *MongoIOCStorage) aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, results)
}

func groupByPipeline(field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: field}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func reverseDaily(days []DailyCount) {
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
}
