// Package logmirror copies request log entries into a MongoDB collection.
package logmirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

const collection = "request-logs"

type Mirror struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to uri and prepares the log collection of database.
func Open(ctx context.Context, uri, database string) (*Mirror, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping wasn't successful: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	if err := initIndexes(ctx, coll); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &Mirror{client: client, coll: coll}, nil
}

func initIndexes(ctx context.Context, coll *mongo.Collection) error {
	requestIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "request_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	envIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "environment_id", Value: 1}, {Key: "created_at", Value: -1}},
	}

	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{requestIndex, envIndex}); err != nil {
		return fmt.Errorf("error while creating indexes for %s collection: %w", collection, err)
	}
	return nil
}

// CreateLog stores a copy of e. Entries already mirrored are skipped.
func (mr *Mirror) CreateLog(ctx context.Context, e *m.LogEntry) error {
	_, err := mr.coll.InsertOne(ctx, toDocument(e))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mirror log %s: %w", e.RequestID, err)
	}
	return nil
}

func (mr *Mirror) Close(ctx context.Context) error {
	return mr.client.Disconnect(ctx)
}

type document struct {
	RequestID      string    `bson:"request_id"`
	EnvironmentID  int64     `bson:"environment_id"`
	EndpointID     *int64    `bson:"endpoint_id,omitempty"`
	ScenarioID     *int64    `bson:"scenario_id,omitempty"`
	Method         string    `bson:"method"`
	Path           string    `bson:"path"`
	RequestHeaders any       `bson:"request_headers,omitempty"`
	RequestBody    any       `bson:"request_body,omitempty"`
	ResponseStatus int       `bson:"response_status"`
	ResponseBody   any       `bson:"response_body,omitempty"`
	DurationMs     int64     `bson:"duration_ms"`
	CreatedAt      time.Time `bson:"created_at"`
}

func toDocument(e *m.LogEntry) document {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return document{
		RequestID:      e.RequestID,
		EnvironmentID:  int64(e.EnvironmentID),
		EndpointID:     optionalID(e.EndpointID),
		ScenarioID:     optionalID(e.ScenarioID),
		Method:         e.Method,
		Path:           e.Path,
		RequestHeaders: decodeJSON(e.RequestHeaders),
		RequestBody:    decodeJSON(e.RequestBody),
		ResponseStatus: e.ResponseStatus,
		ResponseBody:   decodeJSON(e.ResponseBody),
		DurationMs:     e.DurationMs,
		CreatedAt:      created.UTC(),
	}
}

func optionalID(id *uint) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

// decodeJSON turns a serialized column into a value Mongo can query.
// Text that is not JSON is kept as a string.
func decodeJSON(s string) any {
	if s == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
