package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/pkg/apperror"
	"travel-booking-service/pkg/logger"
)

// maxChangeBatch bounds how many already-buffered change events one Next call drains
const maxChangeBatch = 100

// MongoDocumentStore implements the DocumentStore interface on MongoDB
type MongoDocumentStore struct {
	db  *mongo.Database
	log logger.Logger
}

// NewMongoDocumentStore creates a MongoDB document store and ensures the indexes
// the travel collections are queried by
func NewMongoDocumentStore(db *mongo.Database, log logger.Logger) *MongoDocumentStore {
	s := &MongoDocumentStore{db: db, log: log}

	ctx := context.Background()
	for collection, indexes := range DefaultIndexes() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			log.Warn("Failed to create indexes", "collection", collection, "error", err)
		}
	}

	return s
}

// DefaultIndexes lists the secondary indexes per collection
func DefaultIndexes() map[string][]mongo.IndexModel {
	byUser := mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}
	byStatus := mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}}
	uniqueSlug := mongo.IndexModel{Keys: bson.M{"slug": 1}, Options: options.Index().SetUnique(true)}

	return map[string][]mongo.IndexModel{
		entity.CollectionBookings: {
			byUser, byStatus,
			{Keys: bson.D{{Key: "flight.departureDate", Value: 1}}},
		},
		entity.CollectionHotelBookings: {
			byUser, byStatus,
			{Keys: bson.D{{Key: "checkIn", Value: 1}}},
		},
		entity.CollectionVisaApplications: {byUser, byStatus},
		entity.CollectionUniversities: {
			uniqueSlug,
			{Keys: bson.D{{Key: "country", Value: 1}, {Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "featured", Value: 1}, {Key: "name", Value: 1}}},
		},
		entity.CollectionPrograms: {
			{Keys: bson.D{{Key: "universityId", Value: 1}, {Key: "name", Value: 1}}},
		},
		entity.CollectionPriceAlerts: {
			byUser,
			{Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}, {Key: "status", Value: 1}}},
		},
		entity.CollectionOffers: {
			uniqueSlug,
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "validUntil", Value: 1}}},
		},
		entity.CollectionDeals: {
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "expiresAt", Value: 1}}},
		},
		entity.CollectionPushSubscriptions: {byUser},
		entity.CollectionNotifications: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}
}

// Get finds a document by id; a missing document is nil, nil
func (s *MongoDocumentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, translateMongoError(err, "failed to get %s/%s", collection, id)
	}
	return toDocument(raw), nil
}

// Insert stores a new document under id or a fresh ObjectID hex string
func (s *MongoDocumentStore) Insert(ctx context.Context, collection, id string, data map[string]interface{}) (*repository.Document, error) {
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	doc := bson.M{}
	for k, v := range data {
		if k == repository.IDField || k == "_id" {
			continue
		}
		doc[k] = v
	}
	doc["_id"] = id

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperror.Conflict("document %s/%s already exists", collection, id)
		}
		return nil, translateMongoError(err, "failed to insert into %s", collection)
	}
	return toDocument(doc), nil
}

// Update sets the given top-level fields and returns the updated document
func (s *MongoDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (*repository.Document, error) {
	update := buildUpdate(fields)

	var raw bson.M
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id}
	var err error
	if len(update) == 0 {
		err = s.db.Collection(collection).FindOne(ctx, filter).Decode(&raw)
	} else {
		err = s.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&raw)
	}
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("document %s/%s not found", collection, id)
		}
		return nil, translateMongoError(err, "failed to update %s/%s", collection, id)
	}
	return toDocument(raw), nil
}

// Delete removes a document; a missing document is not an error
func (s *MongoDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return translateMongoError(err, "failed to delete %s/%s", collection, id)
	}
	return nil
}

// Query runs a filtered, ordered and limited find
func (s *MongoDocumentStore) Query(ctx context.Context, collection string, q repository.Query) ([]*repository.Document, error) {
	if err := repository.ValidateQuery(q); err != nil {
		return nil, err
	}
	orders := repository.EffectiveOrder(q)
	filter, err := buildMongoFilter(q, orders)
	if err != nil {
		return nil, apperror.Query("%v", err)
	}

	findOptions := options.Find().SetSort(buildMongoSort(orders))
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, translateMongoError(err, "failed to query %s", collection)
	}
	defer cursor.Close(ctx)

	docs := make([]*repository.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, translateMongoError(err, "failed to iterate %s", collection)
	}
	return docs, nil
}

// Watch opens a change stream on collection. It requires a replica set.
func (s *MongoDocumentStore) Watch(ctx context.Context, collection string) (repository.ChangeFeed, error) {
	stream, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, translateMongoError(err, "failed to watch %s", collection)
	}
	return &mongoChangeFeed{stream: stream}, nil
}

// Ping checks the primary is reachable
func (s *MongoDocumentStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return apperror.StoreUnavailable(err, "mongodb ping failed")
	}
	return nil
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID interface{} `bson:"_id"`
	} `bson:"documentKey"`
}

// mongoChangeFeed adapts a change stream to the ChangeFeed interface
type mongoChangeFeed struct {
	stream *mongo.ChangeStream
}

// Next blocks for one event, then drains whatever else is already buffered
func (f *mongoChangeFeed) Next(ctx context.Context) ([]repository.Change, error) {
	if !f.stream.Next(ctx) {
		if err := f.stream.Err(); err != nil {
			return nil, translateMongoError(err, "change stream failed")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrFeedClosed
	}

	changes := []repository.Change{f.decode()}
	for len(changes) < maxChangeBatch && f.stream.TryNext(ctx) {
		changes = append(changes, f.decode())
	}
	return changes, nil
}

func (f *mongoChangeFeed) decode() repository.Change {
	var ev changeEvent
	if err := f.stream.Decode(&ev); err != nil {
		return repository.Change{Op: repository.ChangeResync}
	}
	id := fmt.Sprint(ev.DocumentKey.ID)
	switch ev.OperationType {
	case "insert":
		return repository.Change{ID: id, Op: repository.ChangeInsert}
	case "update", "replace":
		return repository.Change{ID: id, Op: repository.ChangeUpdate}
	case "delete":
		return repository.Change{ID: id, Op: repository.ChangeDelete}
	}
	return repository.Change{Op: repository.ChangeResync}
}

func (f *mongoChangeFeed) Close() error {
	return f.stream.Close(context.Background())
}

// toDocument converts a decoded BSON document into the store-neutral shape
func toDocument(raw bson.M) *repository.Document {
	id := ""
	if v, ok := raw["_id"]; ok {
		if oid, isOID := v.(primitive.ObjectID); isOID {
			id = oid.Hex()
		} else {
			id = fmt.Sprint(v)
		}
	}
	data := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		data[k] = fromBSON(v)
	}
	return &repository.Document{ID: id, Data: data}
}

func fromBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = fromBSON(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = fromBSON(item)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = fromBSON(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = fromBSON(item)
		}
		return out
	case primitive.DateTime:
		return entity.NormalizeTimestamp(t)
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	}
	return v
}

// translateMongoError maps driver failures onto the store error kinds
func translateMongoError(err error, format string, args ...interface{}) error {
	var selectionErr topology.ServerSelectionError
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.As(err, &selectionErr) {
		return apperror.StoreUnavailable(err, format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
