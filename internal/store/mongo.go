// internal/store/mongo.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stocknexus/internal/logging"
)

const writeTimeout = 10 * time.Second

// MongoDispatcher applies write intents to a MongoDB database. Intents are
// applied in order, one document at a time; there is no multi-document
// transaction, matching the store contract the rest of the system assumes.
type MongoDispatcher struct {
	db     *mongo.Database
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewMongoDispatcher(db *mongo.Database, logger *logrus.Logger) *MongoDispatcher {
	return &MongoDispatcher{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("stocknexus/store"),
	}
}

// Dispatch applies the intents asynchronously. Failures are logged and not
// retried; the in-memory state the services maintain stays authoritative for
// the running process.
func (d *MongoDispatcher) Dispatch(ctx context.Context, intents ...WriteIntent) {
	go func() {
		for _, intent := range intents {
			if err := d.apply(context.WithoutCancel(ctx), intent); err != nil {
				logging.LogError(d.logger, "store", "Dispatch",
					fmt.Sprintf("%s %s/%s", intent.Op, intent.Collection, intent.ID), nil, err)
			}
		}
	}()
}

func (d *MongoDispatcher) apply(ctx context.Context, intent WriteIntent) error {
	ctx, span := d.tracer.Start(ctx, "store.apply",
		trace.WithAttributes(
			attribute.String("store.op", string(intent.Op)),
			attribute.String("store.collection", intent.Collection),
			attribute.String("store.document_id", intent.ID),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	col := d.db.Collection(intent.Collection)
	filter := bson.M{"_id": intent.ID}

	var err error
	switch intent.Op {
	case OpUpsert:
		_, err = col.ReplaceOne(ctx, filter, intent.Doc, options.Replace().SetUpsert(true))
	case OpPatch:
		fields, ok := intent.Doc.(map[string]interface{})
		if !ok {
			err = fmt.Errorf("patch intent needs a field map, got %T", intent.Doc)
			break
		}
		_, err = col.UpdateOne(ctx, filter, bson.M{"$set": bson.M(fields)}, options.Update().SetUpsert(true))
	case OpDelete:
		_, err = col.DeleteOne(ctx, filter)
	default:
		err = fmt.Errorf("unknown op %q", intent.Op)
	}

	if err != nil {
		return fmt.Errorf("apply %s on %s/%s: %w", intent.Op, intent.Collection, intent.ID, err)
	}

	span.SetAttributes(attribute.Bool("store.applied", true))
	return nil
}

// Connect opens a Mongo client and verifies the connection.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(dbName), nil
}
