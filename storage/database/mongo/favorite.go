package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/campuslink/core/favorite"
)

type favoriteRepository struct {
	coll *mongo.Collection
}

var _ favorite.Repository = (*favoriteRepository)(nil)

// NewFavoriteRepository stores one document per user, keyed by email.
func NewFavoriteRepository(db *mongo.Database) favorite.Repository {
	return &favoriteRepository{coll: db.Collection(FavoriteCollection)}
}

func (repo *favoriteRepository) GetFavorites(ctx context.Context, email string) (favorite.Record, error) {
	var rec favorite.Record
	if err := repo.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return favorite.Record{}, favorite.ErrNotFound
		}
		return favorite.Record{}, err
	}
	if rec.Favorites == nil {
		rec.Favorites = []string{}
	}
	return rec, nil
}

func (repo *favoriteRepository) CreateFavorites(ctx context.Context, email string) (favorite.Record, error) {
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "email", Value: email},
		{Key: "favorites", Value: []string{}},
	}}}
	_, err := repo.coll.UpdateOne(ctx, bson.M{"_id": email}, update, options.Update().SetUpsert(true))
	// two concurrent upserts may race on the _id index, the loser reads the winner's record
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return favorite.Record{}, err
	}
	return repo.GetFavorites(ctx, email)
}

func (repo *favoriteRepository) SetFavorites(ctx context.Context, email string, keys []string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "email", Value: email},
		{Key: "favorites", Value: keys},
	}}}
	_, err := repo.coll.UpdateOne(ctx, bson.M{"_id": email}, update, options.Update().SetUpsert(true))
	return err
}
