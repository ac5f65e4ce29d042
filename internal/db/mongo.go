package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

const (
	// CollectionName is the time-series collection holding every reading.
	CollectionName = "sensor-readings"

	opTimeout = 10 * time.Second
)

// MongoTimeSeriesStore implements domain.DataStore on a MongoDB time-series
// collection partitioned by timestamp and the (roomId, buildingId, floor)
// metadata tuple.
type MongoTimeSeriesStore struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoConnection(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = client.Ping(ctx, readpref.Primary())

	return client, nil
}

// NewMongoTimeSeriesStore ensures the time-series collection exists, creating
// it only when a listCollections probe does not find it, then prepares the
// supporting indexes.
func NewMongoTimeSeriesStore(client *mongo.Client, database string) (*MongoTimeSeriesStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	db := client.Database(database)

	names, err := db.ListCollectionNames(ctx, bson.M{"name": CollectionName})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if len(names) == 0 {
		tsOptions := options.CreateCollection().SetTimeSeriesOptions(
			options.TimeSeries().
				SetTimeField("timestamp").
				SetMetaField("metadata").
				SetGranularity("seconds"),
		)
		if err := db.CreateCollection(ctx, CollectionName, tsOptions); err != nil {
			return nil, mapStoreErr(err)
		}
	}

	collection := db.Collection(CollectionName)

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "metadata.roomId", Value: 1},
				{Key: "timestamp", Value: 1},
			},
		},
	}
	collection.Indexes().CreateMany(ctx, indexModels)

	return &MongoTimeSeriesStore{
		client:     client,
		db:         db,
		collection: collection,
	}, nil
}

func (m *MongoTimeSeriesStore) Append(ctx context.Context, rec domain.ReadingRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := m.collection.InsertOne(ctx, rec)
	return mapStoreErr(err)
}

func (m *MongoTimeSeriesStore) AppendBatch(ctx context.Context, recs []domain.ReadingRecord) error {
	if len(recs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	docs := make([]interface{}, len(recs))
	for i, r := range recs {
		docs[i] = r
	}

	opts := options.InsertMany().SetOrdered(false)
	_, err := m.collection.InsertMany(ctx, docs, opts)
	return mapStoreErr(err)
}

// RangeScan returns records for roomID since the given time, ascending by
// timestamp. The cap keeps the oldest entries in the window: sort ascending
// first, then limit.
func (m *MongoTimeSeriesStore) RangeScan(ctx context.Context, roomID string, since time.Time, limit int64) ([]domain.ReadingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(limit)

	cursor, err := m.collection.Find(ctx, rangeFilter(roomID, since), opts)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer cursor.Close(ctx)

	var records []domain.ReadingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, mapStoreErr(err)
	}

	return records, nil
}

// Aggregate groups a room's records in the window into RoomStats. Mongo
// returns no row at all for an empty group, which maps to (nil, nil).
func (m *MongoTimeSeriesStore) Aggregate(ctx context.Context, roomID string, since time.Time) (*domain.RoomStats, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := m.collection.Aggregate(ctx, buildStatsPipeline(roomID, since))
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer cursor.Close(ctx)

	var results []domain.RoomStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, mapStoreErr(err)
	}

	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (m *MongoTimeSeriesStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func (m *MongoTimeSeriesStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func rangeFilter(roomID string, since time.Time) bson.M {
	return bson.M{
		"metadata.roomId": roomID,
		"timestamp":       bson.M{"$gte": since},
	}
}

func buildStatsPipeline(roomID string, since time.Time) []bson.M {
	return []bson.M{
		{"$match": rangeFilter(roomID, since)},
		{"$group": bson.M{
			"_id":           nil,
			"avgTemp":       bson.M{"$avg": "$temperature"},
			"minTemp":       bson.M{"$min": "$temperature"},
			"maxTemp":       bson.M{"$max": "$temperature"},
			"avgHumidity":   bson.M{"$avg": "$humidity"},
			"avgOccupancy":  bson.M{"$avg": "$occupancy"},
			"maxOccupancy":  bson.M{"$max": "$occupancy"},
			"totalReadings": bson.M{"$sum": 1},
		}},
	}
}

// mapStoreErr folds driver errors into the domain taxonomy: schema and
// validation refusals become ErrWriteRejected, everything else that stops a
// call from completing becomes ErrStoreUnavailable.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}

	var we mongo.WriteException
	var bwe mongo.BulkWriteException
	if errors.As(err, &we) || errors.As(err, &bwe) {
		return fmt.Errorf("%w: %v", domain.ErrWriteRejected, err)
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
