package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/application"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
	firestorerepos "github.com/campuslink/campuslink/storage/database/firestore"
	inmemdb "github.com/campuslink/campuslink/storage/database/inmem"
	mongorepos "github.com/campuslink/campuslink/storage/database/mongo"
)

// Repositories groups the stores of one database engine.
type Repositories struct {
	Events       event.Repository
	Favorites    favorite.Repository
	Applications application.Repository

	close func() error
}

// Close releases the underlying client.
func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open builds the repositories of the configured engine: firestore, mongo or memory.
func Open(ctx context.Context, conf core.DatabaseConfig, logger core.Logger) (*Repositories, error) {
	switch conf.Engine {
	case "firestore":
		client, err := firestorerepos.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening firestore")
		}
		return &Repositories{
			Events:       firestorerepos.NewEventRepository(client, logger),
			Favorites:    firestorerepos.NewFavoriteRepository(client),
			Applications: firestorerepos.NewApplicationRepository(client),
			close:        client.Close,
		}, nil

	case "mongo":
		client, db, err := mongorepos.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening mongo")
		}
		return &Repositories{
			Events:       mongorepos.NewEventRepository(db),
			Favorites:    mongorepos.NewFavoriteRepository(db),
			Applications: mongorepos.NewApplicationRepository(db),
			close:        func() error { return client.Disconnect(context.Background()) },
		}, nil

	case "memory", "":
		return OpenMemory(inmemdb.Open()), nil

	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Engine)
	}
}

// OpenMemory wraps an in-memory database, used by tests and local runs.
func OpenMemory(db *inmemdb.DB) *Repositories {
	return &Repositories{
		Events:       inmemdb.NewEventRepository(db),
		Favorites:    inmemdb.NewFavoriteRepository(db),
		Applications: inmemdb.NewApplicationRepository(db),
	}
}
