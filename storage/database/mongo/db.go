package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/campuslink/core"
)

// Collections
const (
	EventCollection       = "Works"
	FavoriteCollection    = "userfav"
	ApplicationCollection = "applications"
)

// Open connects to MongoDB and waits for the server to answer.
func Open(ctx context.Context, conf core.DatabaseConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.MongoURI))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(conf.MongoName), nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = client.Ping(ctx, nil); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func checkInValues(values []string) error {
	if len(values) > core.MaxInQueryValues {
		return core.ErrTooManyValues
	}
	return nil
}
